package declare

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AMAShyp/declare/internal/dbx"
)

func TestItemByBarcode(t *testing.T) {
	sess := &fakeSession{
		FetchFn: func(ctx context.Context, query string, args ...any) (*dbx.Table, error) {
			require.Equal(t, []any{"6291001234567"}, args)
			return &dbx.Table{
				Columns: []string{"itemid", "name", "barcode", "familycat", "sectioncat", "departmentcat", "classcat"},
				Rows:    [][]any{{int64(42), "Basmati Rice 5kg", "6291001234567", "Food", "Grains", nil, nil}},
			}, nil
		},
	}
	st := NewStore(sess)

	item, err := st.ItemByBarcode(context.Background(), "6291001234567")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, int64(42), item.ItemID)
	assert.Equal(t, "Basmati Rice 5kg", item.Name)
	assert.Equal(t, "Grains", item.SectionCat)
	assert.Equal(t, "", item.DepartmentCat)
}

func TestItemByBarcodeUnknown(t *testing.T) {
	sess := &fakeSession{
		FetchFn: func(ctx context.Context, query string, args ...any) (*dbx.Table, error) {
			return &dbx.Table{Columns: []string{"itemid"}}, nil
		},
	}
	st := NewStore(sess)

	item, err := st.ItemByBarcode(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestInventoryTotal(t *testing.T) {
	sess := &fakeSession{
		FetchFn: func(ctx context.Context, query string, args ...any) (*dbx.Table, error) {
			return &dbx.Table{Columns: []string{"total"}, Rows: [][]any{{int64(17)}}}, nil
		},
	}
	st := NewStore(sess)

	total, err := st.InventoryTotal(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(17), total)
}

func TestInventoryTotalNull(t *testing.T) {
	// SUM over no rows yields a single NULL.
	sess := &fakeSession{
		FetchFn: func(ctx context.Context, query string, args ...any) (*dbx.Table, error) {
			return &dbx.Table{Columns: []string{"total"}, Rows: [][]any{{nil}}}, nil
		},
	}
	st := NewStore(sess)

	total, err := st.InventoryTotal(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestRecentDeclarations(t *testing.T) {
	when := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	sess := &fakeSession{
		FetchFn: func(ctx context.Context, query string, args ...any) (*dbx.Table, error) {
			require.Equal(t, []any{"A1-01", 200}, args, "default limit applies")
			return &dbx.Table{
				Columns: []string{"entryid", "itemid", "name", "barcode", "quantity", "entrydate"},
				Rows: [][]any{
					{int64(7), int64(42), "Basmati Rice 5kg", "629100", int32(3), when},
				},
			}, nil
		},
	}
	st := NewStore(sess)

	recent, err := st.RecentDeclarations(context.Background(), "A1-01", 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, int64(7), recent[0].EntryID)
	assert.Equal(t, 3, recent[0].Quantity)
	assert.Equal(t, when, recent[0].EntryDate)
}

func TestDropdownValues(t *testing.T) {
	sess := &fakeSession{
		FetchFn: func(ctx context.Context, query string, args ...any) (*dbx.Table, error) {
			require.Equal(t, []any{"familycat"}, args)
			return &dbx.Table{Columns: []string{"value"}, Rows: [][]any{{"Food"}, {"Household"}}}, nil
		},
	}
	st := NewStore(sess)

	values, err := st.DropdownValues(context.Background(), "familycat")
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Household"}, values)
}

func TestSuppliers(t *testing.T) {
	sess := &fakeSession{
		FetchFn: func(ctx context.Context, query string, args ...any) (*dbx.Table, error) {
			return &dbx.Table{
				Columns: []string{"supplierid", "suppliername"},
				Rows:    [][]any{{int64(1), "Acme Wholesale"}},
			}, nil
		},
	}
	st := NewStore(sess)

	suppliers, err := st.Suppliers(context.Background())
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	assert.Equal(t, "Acme Wholesale", suppliers[0].Name)
}

func TestAddInventoryQuotesColumns(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	sess := &fakeSession{
		ExecRetFn: func(ctx context.Context, query string, args ...any) ([]any, error) {
			gotQuery = query
			gotArgs = args
			return []any{int64(9)}, nil
		},
	}
	st := NewStore(sess)

	id, err := st.AddInventory(context.Background(), map[string]any{
		"itemid":   int64(42),
		"quantity": 5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	assert.True(t, strings.HasPrefix(gotQuery, "INSERT INTO inventory"), gotQuery)
	assert.Contains(t, gotQuery, `"itemid"`)
	assert.Contains(t, gotQuery, `"quantity"`)
	assert.Contains(t, gotQuery, "RETURNING inventoryid")
	// Columns are sorted, so args follow alphabetical order.
	assert.Equal(t, []any{int64(42), 5}, gotArgs)
}

func TestAddInventoryRejectsBadColumn(t *testing.T) {
	called := false
	sess := &fakeSession{
		ExecRetFn: func(ctx context.Context, query string, args ...any) ([]any, error) {
			called = true
			return nil, nil
		},
	}
	st := NewStore(sess)

	_, err := st.AddInventory(context.Background(), map[string]any{
		"quantity; DROP TABLE item": 1,
	})
	require.Error(t, err)
	assert.False(t, called, "nothing reaches the database")
}

func TestStorePropagatesFetchError(t *testing.T) {
	sess := &fakeSession{
		FetchFn: func(ctx context.Context, query string, args ...any) (*dbx.Table, error) {
			return nil, errors.New("boom")
		},
	}
	st := NewStore(sess)

	_, err := st.Sections(context.Background())
	require.Error(t, err)

	_, err = st.ItemLocations(context.Background(), 1)
	require.Error(t, err)
}

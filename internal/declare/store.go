package declare

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AMAShyp/declare/internal/dbx"
)

// Session is the per-request database handle handed out by the connection
// manager. It is implemented by *dbx.Session and mocked for testing.
type Session interface {
	FetchRows(ctx context.Context, query string, args ...any) (*dbx.Table, error)
	Execute(ctx context.Context, query string, args ...any) error
	ExecuteReturning(ctx context.Context, query string, args ...any) ([]any, error)
	CheckForeignKeyReferences(ctx context.Context, referencedTable, referencedColumn string, value any) ([]string, error)
}

// SessionSource resolves a session key to its dedicated connection.
type SessionSource interface {
	Acquire(ctx context.Context, sessionKey string) (Session, error)
}

// Store bundles the declaration queries over one session.
type Store struct {
	db Session
}

func NewStore(db Session) *Store {
	return &Store{db: db}
}

// ItemByBarcode returns the matching item, or nil when the barcode is
// unknown.
func (st *Store) ItemByBarcode(ctx context.Context, barcode string) (*Item, error) {
	tbl, err := st.db.FetchRows(ctx, `
		SELECT itemid, itemnameenglish AS name, barcode,
		       familycat, sectioncat, departmentcat, classcat
		FROM item
		WHERE barcode = $1
		LIMIT 1
	`, barcode)
	if err != nil {
		return nil, fmt.Errorf("looking up barcode: %w", err)
	}
	if tbl.Empty() {
		return nil, nil
	}
	return &Item{
		ItemID:        asInt64(tbl.Value(0, "itemid")),
		Name:          asString(tbl.Value(0, "name")),
		Barcode:       asString(tbl.Value(0, "barcode")),
		FamilyCat:     asString(tbl.Value(0, "familycat")),
		SectionCat:    asString(tbl.Value(0, "sectioncat")),
		DepartmentCat: asString(tbl.Value(0, "departmentcat")),
		ClassCat:      asString(tbl.Value(0, "classcat")),
	}, nil
}

// InventoryTotal sums the positive inventory quantities for an item.
func (st *Store) InventoryTotal(ctx context.Context, itemID int64) (int64, error) {
	tbl, err := st.db.FetchRows(ctx, `
		SELECT SUM(quantity) AS total
		FROM inventory
		WHERE itemid = $1 AND quantity > 0
	`, itemID)
	if err != nil {
		return 0, fmt.Errorf("summing inventory: %w", err)
	}
	if tbl.Empty() || tbl.Value(0, "total") == nil {
		return 0, nil
	}
	return asInt64(tbl.Value(0, "total")), nil
}

// ItemLocations lists the distinct shelf locations an item has been declared
// at.
func (st *Store) ItemLocations(ctx context.Context, itemID int64) ([]string, error) {
	tbl, err := st.db.FetchRows(ctx, `
		SELECT DISTINCT locid
		FROM shelfentries
		WHERE itemid = $1 AND locid IS NOT NULL AND locid <> ''
		ORDER BY locid
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("listing item locations: %w", err)
	}
	return tbl.Strings("locid"), nil
}

// RecentDeclarations returns the newest declarations at a location, most
// recent first.
func (st *Store) RecentDeclarations(ctx context.Context, locID string, limit int) ([]RecentDeclaration, error) {
	if limit <= 0 {
		limit = 200
	}
	tbl, err := st.db.FetchRows(ctx, `
		SELECT se.entryid,
		       se.itemid,
		       i.itemnameenglish AS name,
		       i.barcode,
		       se.quantity,
		       se.entrydate
		FROM shelfentries se
		JOIN item i ON i.itemid = se.itemid
		WHERE se.locid = $1 AND se.note = 'declare'
		ORDER BY se.entrydate DESC, se.entryid DESC
		LIMIT $2
	`, locID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent declarations: %w", err)
	}

	out := make([]RecentDeclaration, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		out = append(out, RecentDeclaration{
			EntryID:   asInt64(tbl.Value(i, "entryid")),
			ItemID:    asInt64(tbl.Value(i, "itemid")),
			Name:      asString(tbl.Value(i, "name")),
			Barcode:   asString(tbl.Value(i, "barcode")),
			Quantity:  int(asInt64(tbl.Value(i, "quantity"))),
			EntryDate: asTime(tbl.Value(i, "entrydate")),
		})
	}
	return out, nil
}

// Sections lists the distinct dropdown sections.
func (st *Store) Sections(ctx context.Context) ([]string, error) {
	tbl, err := st.db.FetchRows(ctx, `SELECT DISTINCT section FROM dropdowns ORDER BY section`)
	if err != nil {
		return nil, fmt.Errorf("listing dropdown sections: %w", err)
	}
	return tbl.Strings("section"), nil
}

// DropdownValues lists the values of one dropdown section.
func (st *Store) DropdownValues(ctx context.Context, section string) ([]string, error) {
	tbl, err := st.db.FetchRows(ctx, `SELECT value FROM dropdowns WHERE section = $1 ORDER BY value`, section)
	if err != nil {
		return nil, fmt.Errorf("listing dropdown values: %w", err)
	}
	return tbl.Strings("value"), nil
}

// Suppliers lists every supplier.
func (st *Store) Suppliers(ctx context.Context) ([]Supplier, error) {
	tbl, err := st.db.FetchRows(ctx, `SELECT supplierid, suppliername FROM supplier ORDER BY suppliername`)
	if err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}
	out := make([]Supplier, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		out = append(out, Supplier{
			SupplierID: asInt64(tbl.Value(i, "supplierid")),
			Name:       asString(tbl.Value(i, "suppliername")),
		})
	}
	return out, nil
}

var identifierRx = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// AddInventory inserts one keyed inventory row and returns the new row id.
// Column names must be plain identifiers; they are quoted before being
// spliced into the statement.
func (st *Store) AddInventory(ctx context.Context, values map[string]any) (int64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("no inventory values given")
	}

	cols := make([]string, 0, len(values))
	for k := range values {
		if !identifierRx.MatchString(k) {
			return 0, fmt.Errorf("invalid inventory column %q", k)
		}
		cols = append(cols, k)
	}
	sort.Strings(cols)

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = values[c]
	}

	query := fmt.Sprintf("INSERT INTO inventory (%s) VALUES (%s) RETURNING inventoryid",
		join(quoted, ", "), join(placeholders, ", "))
	row, err := st.db.ExecuteReturning(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting inventory row: %w", err)
	}
	if len(row) == 0 {
		return 0, fmt.Errorf("inserting inventory row: no id returned")
	}
	return asInt64(row[0]), nil
}

// CheckForeignKeyReferences exposes the session-level referential check.
func (st *Store) CheckForeignKeyReferences(ctx context.Context, table, column string, value any) ([]string, error) {
	return st.db.CheckForeignKeyReferences(ctx, table, column, value)
}

func join(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += sep + parts[i]
	}
	return out
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int16:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func asTime(v any) time.Time {
	if t, ok := v.(time.Time); ok {
		return t
	}
	return time.Time{}
}

package declare

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// validRow is a DeclarationRow that passed validation.
type validRow struct {
	ItemID   int64
	Quantity int
	LocID    string
}

func validateRow(idx int, r DeclarationRow) (validRow, error) {
	itemID, err := strconv.ParseInt(strings.TrimSpace(r.ItemID), 10, 64)
	if err != nil || itemID <= 0 {
		return validRow{}, fmt.Errorf("row %d: invalid item id %q", idx+1, r.ItemID)
	}
	qty, err := strconv.Atoi(strings.TrimSpace(r.Quantity))
	if err != nil {
		return validRow{}, fmt.Errorf("row %d: invalid quantity %q", idx+1, r.Quantity)
	}
	if qty <= 0 {
		return validRow{}, fmt.Errorf("row %d: quantity must be positive, got %d", idx+1, qty)
	}
	locID := strings.TrimSpace(r.LocID)
	if locID == "" {
		return validRow{}, fmt.Errorf("row %d: missing location", idx+1)
	}
	return validRow{ItemID: itemID, Quantity: qty, LocID: locID}, nil
}

const declareInsertColumns = "(itemid, quantity, locid, trx_type, note, reference_id, reference_type, entrydate)"

func bulkInsertSQL(n int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO shelfentries ")
	b.WriteString(declareInsertColumns)
	b.WriteString(" VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		base := i * 3
		fmt.Fprintf(&b, "($%d, $%d, $%d, 'STOCKTAKE', 'declare', NULL, NULL, NOW())", base+1, base+2, base+3)
	}
	return b.String()
}

// BulkDeclare validates every submitted row, writes the valid ones in a
// single multi-row insert, and falls back to row-by-row inserts when the
// bulk statement fails so one bad row cannot sink the whole batch.
//
// Invalid rows are reported in Errors but never counted in OK or Failed;
// for the validated rows, OK+Failed always equals their count.
func (st *Store) BulkDeclare(ctx context.Context, rows []DeclarationRow) (*BulkOutcome, error) {
	out := &BulkOutcome{Errors: []string{}}

	valid := make([]validRow, 0, len(rows))
	for i, r := range rows {
		v, err := validateRow(i, r)
		if err != nil {
			out.Errors = append(out.Errors, err.Error())
			continue
		}
		valid = append(valid, v)
	}
	if len(valid) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(valid)*3)
	for _, v := range valid {
		args = append(args, v.ItemID, v.Quantity, v.LocID)
	}
	if err := st.db.Execute(ctx, bulkInsertSQL(len(valid)), args...); err == nil {
		out.OK = len(valid)
		return out, nil
	}

	// The bulk statement failed. Retry each row on its own so the good
	// ones still land and the offenders get named.
	for _, v := range valid {
		err := st.db.Execute(ctx, bulkInsertSQL(1), v.ItemID, v.Quantity, v.LocID)
		if err != nil {
			out.Failed++
			out.Errors = append(out.Errors,
				fmt.Sprintf("item %d qty %d at %s: %v", v.ItemID, v.Quantity, v.LocID, err))
			continue
		}
		out.OK++
	}
	return out, nil
}

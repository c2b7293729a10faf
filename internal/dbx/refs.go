package dbx

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
)

const foreignKeySQL = `
	SELECT tc.table_schema,
	       tc.table_name
	FROM   information_schema.table_constraints AS tc
	JOIN   information_schema.key_column_usage AS kcu
	       ON tc.constraint_name = kcu.constraint_name
	JOIN   information_schema.constraint_column_usage AS ccu
	       ON ccu.constraint_name = tc.constraint_name
	WHERE  tc.constraint_type = 'FOREIGN KEY'
	  AND  ccu.table_name  = $1
	  AND  ccu.column_name = $2`

// CheckForeignKeyReferences returns the qualified names of every table that
// declares a foreign key against referencedTable.referencedColumn and
// currently holds at least one row referencing value. Names are sorted and
// deduplicated; an empty result means the value is safe to delete.
func (s *Session) CheckForeignKeyReferences(ctx context.Context, referencedTable, referencedColumn string, value any) ([]string, error) {
	fks, err := s.FetchRows(ctx, foreignKeySQL, referencedTable, referencedColumn)
	if err != nil {
		return nil, fmt.Errorf("looking up foreign keys for %s.%s: %w", referencedTable, referencedColumn, err)
	}

	seen := make(map[string]bool)
	for i := 0; i < fks.Len(); i++ {
		schema, _ := fks.Value(i, "table_schema").(string)
		table, _ := fks.Value(i, "table_name").(string)
		if schema == "" || table == "" {
			continue
		}
		qualified := schema + "." + table
		if seen[qualified] {
			continue
		}

		// Identifiers cannot be bound as parameters; sanitize them instead.
		existsSQL := fmt.Sprintf(
			"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)",
			pgx.Identifier{schema, table}.Sanitize(),
			pgx.Identifier{referencedColumn}.Sanitize(),
		)
		res, err := s.FetchRows(ctx, existsSQL, value)
		if err != nil {
			return nil, fmt.Errorf("probing %s: %w", qualified, err)
		}
		if exists, _ := res.Value(0, "exists").(bool); exists {
			seen[qualified] = true
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

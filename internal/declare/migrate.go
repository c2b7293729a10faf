package declare

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS item (
          itemid          BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
          itemnameenglish TEXT NOT NULL,
          barcode         TEXT NOT NULL UNIQUE,
          familycat       TEXT NOT NULL DEFAULT '',
          sectioncat      TEXT NOT NULL DEFAULT '',
          departmentcat   TEXT NOT NULL DEFAULT '',
          classcat        TEXT NOT NULL DEFAULT '',
          created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		log.Printf("migrate declare-service: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS inventory (
          inventoryid BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
          itemid      BIGINT NOT NULL REFERENCES item(itemid),
          quantity    INT NOT NULL DEFAULT 0,
          expirationdate DATE,
          storagelocation TEXT NOT NULL DEFAULT '',
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS shelfentries (
          entryid   BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
          itemid    BIGINT NOT NULL REFERENCES item(itemid),
          quantity  INT NOT NULL,
          locid     TEXT NOT NULL DEFAULT '',
          trx_type  TEXT NOT NULL DEFAULT 'STOCKTAKE',
          note      TEXT NOT NULL DEFAULT '',
          reference_id   BIGINT,
          reference_type TEXT,
          entrydate TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_shelfentries_loc_date
      ON shelfentries(locid, entrydate DESC)
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS dropdowns (
          section TEXT NOT NULL,
          value   TEXT NOT NULL,
          PRIMARY KEY (section, value)
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS supplier (
          supplierid   BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
          suppliername TEXT NOT NULL
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS shelf_locations (
          locid        TEXT PRIMARY KEY,
          label        TEXT,
          x_pct        DOUBLE PRECISION NOT NULL,
          y_pct        DOUBLE PRECISION NOT NULL,
          w_pct        DOUBLE PRECISION NOT NULL,
          h_pct        DOUBLE PRECISION NOT NULL,
          rotation_deg DOUBLE PRECISION NOT NULL DEFAULT 0
      )
    `); err != nil {
		return err
	}

	return nil
}

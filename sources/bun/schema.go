package cardbun

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-contract-card/contract"
)

// OpenSQLite opens a SQLite database through the sqliteshim driver.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, contract.NewError(contract.KindInternal, "open contract database", err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateSchema creates the contracts table when it does not exist.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return contract.NewError(contract.KindNotImpl, "contract database not configured", nil)
	}
	if _, err := db.NewCreateTable().Model((*contractModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return contract.NewError(contract.KindInternal, "create contracts table", err)
	}
	return nil
}

// Seed inserts fixture records. It is meant for demos and tests; Source itself
// never writes.
func Seed(ctx context.Context, db *bun.DB, records ...contract.Record) error {
	if db == nil {
		return contract.NewError(contract.KindNotImpl, "contract database not configured", nil)
	}
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
		model, err := modelFromRecord(record)
		if err != nil {
			return contract.NewError(contract.KindValidation, fmt.Sprintf("contract %q", record.ID), err)
		}
		if _, err := db.NewInsert().Model(&model).Exec(ctx); err != nil {
			return contract.NewError(contract.KindInternal, fmt.Sprintf("insert contract %q", record.ID), err)
		}
	}
	return nil
}

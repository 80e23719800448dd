package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-courseware/core"
)

// base holds the executor shared by every repository.
type base struct {
	db core.DB
}

func (b base) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return b.db.GetContext(ctx, dest, b.db.Rebind(query), args...)
}

func (b base) selekt(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return b.db.SelectContext(ctx, dest, b.db.Rebind(query), args...)
}

func (b base) exec(ctx context.Context, exec core.DBExecutor, query string, args ...interface{}) (sql.Result, error) {
	return exec.ExecContext(ctx, exec.Rebind(query), args...)
}

// inTx runs fn in a transaction, rolled back when fn fails.
func (b base) inTx(ctx context.Context, fn func(tx core.DBExecutor) error) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func isNoRows(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

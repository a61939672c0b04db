package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"
)

// cutoverStateRepo persists the last boundary instant the scheduler has
// processed. Single-row table.
type cutoverStateRepo struct {
	dbGetter txStdLib.DBGetter
	l        log.Logger
}

func NewCutoverStateRepo(dbGetter txStdLib.DBGetter, logger log.Logger) *cutoverStateRepo {
	return &cutoverStateRepo{
		dbGetter: dbGetter,
		l:        logger,
	}
}

func (r *cutoverStateRepo) LastBoundary(ctx context.Context) (time.Time, error) {
	db := r.dbGetter(ctx)
	var unix int64
	err := db.QueryRowContext(ctx, "SELECT last_boundary FROM cutover_state WHERE id = 1").Scan(&unix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return time.Unix(unix, 0).UTC(), nil
}

func (r *cutoverStateRepo) SetLastBoundary(ctx context.Context, boundary time.Time) error {
	db := r.dbGetter(ctx)
	query := `INSERT INTO cutover_state (id, last_boundary) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET last_boundary = excluded.last_boundary`
	r.l.Debug("recording processed boundary", "boundary", boundary)
	_, err := db.ExecContext(ctx, query, boundary.Unix())
	return err
}

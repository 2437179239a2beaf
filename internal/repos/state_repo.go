package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// StateRepo is the durable per-session key/value store backing local state
// such as the cart.
type StateRepo struct{ db *sqlx.DB }

func NewStateRepo(db *sqlx.DB) *StateRepo { return &StateRepo{db: db} }

// Get returns (nil, nil) when nothing is stored under key.
func (r *StateRepo) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	var v string
	err := r.db.GetContext(ctx, &v, r.db.Rebind(`SELECT value FROM local_state WHERE session_id=? AND name=?`), sessionID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (r *StateRepo) Set(ctx context.Context, sessionID, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO local_state(session_id,name,value,updated_at)
		VALUES(?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(session_id,name) DO UPDATE
		SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`), sessionID, key, string(value))
	return err
}

func (r *StateRepo) Delete(ctx context.Context, sessionID, key string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM local_state WHERE session_id=? AND name=?`), sessionID, key)
	return err
}

package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

// ErrNoSession is returned when the browser session is not signed in.
var ErrNoSession = errors.New("no signed-in user for session")

// Session is what a signed-in browser session carries between requests.
type Session struct {
	User  domain.User
	Token string
}

type SessionRepo struct{ db *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{db: db} }

// BindSession records the signed-in user and their bearer token for sid.
func (r *SessionRepo) BindSession(ctx context.Context, sid string, u domain.User, token string) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO sessions(id,user_id,token,user_json,last_seen)
                          VALUES(?,?,?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,token=excluded.token,
                          user_json=excluded.user_json,last_seen=CURRENT_TIMESTAMP`), sid, u.ID, token, string(raw))
	return err
}

// SessionUser returns ErrNoSession when sid is unknown or signed out.
func (r *SessionRepo) SessionUser(ctx context.Context, sid string) (*Session, error) {
	var row struct {
		Token    sql.NullString `db:"token"`
		UserJSON sql.NullString `db:"user_json"`
	}
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT token,user_json FROM sessions WHERE id=? AND user_id IS NOT NULL`), sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if !row.Token.Valid || row.Token.String == "" || !row.UserJSON.Valid {
		return nil, ErrNoSession
	}
	var s Session
	if err := json.Unmarshal([]byte(row.UserJSON.String), &s.User); err != nil {
		return nil, err
	}
	s.Token = row.Token.String
	return &s, nil
}

// UnbindSession signs sid out. The row stays so the local cart keeps its owner.
func (r *SessionRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE sessions SET user_id=NULL,token=NULL,user_json=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`), sid)
	return err
}

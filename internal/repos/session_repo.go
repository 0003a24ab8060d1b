package repos

import (
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
)

// SessionRepo binds sid cookies to account projections. Sessions live next
// to the Document, never inside it.
type SessionRepo struct{ DB *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{DB: db} }

func (r *SessionRepo) Bind(sid string, u domain.SessionUser) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(`INSERT INTO sessions(id,user_json,last_seen) VALUES(?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET user_json=excluded.user_json, last_seen=CURRENT_TIMESTAMP`, sid, string(b))
	return err
}

func (r *SessionRepo) User(sid string) (*domain.SessionUser, error) {
	var raw string
	if err := r.DB.Get(&raw, `SELECT user_json FROM sessions WHERE id=?`, sid); err != nil {
		return nil, err
	}
	var u domain.SessionUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *SessionRepo) Unbind(sid string) error {
	_, err := r.DB.Exec(`DELETE FROM sessions WHERE id=?`, sid)
	return err
}

package repos

import (
	"github.com/jmoiron/sqlx"
)

// seenMarker distinguishes "initialized with an empty set" from "never
// initialized" for a given user.
const seenMarker = "-"

// SeenRepo records which approved notice ids have already been surfaced to
// a farmer, so each approval is notified exactly once.
type SeenRepo struct{ DB *sqlx.DB }

func NewSeenRepo(db *sqlx.DB) *SeenRepo { return &SeenRepo{DB: db} }

// Seen returns the set of surfaced notice ids and whether the user has been
// initialized at all.
func (r *SeenRepo) Seen(userID string) (map[string]bool, bool, error) {
	var ids []string
	if err := r.DB.Select(&ids, `SELECT notice_id FROM seen_notices WHERE user_id=?`, userID); err != nil {
		return nil, false, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != seenMarker {
			set[id] = true
		}
	}
	return set, len(ids) > 0, nil
}

// MarkSeen adds ids to the user's seen set (idempotent) and stamps the user
// as initialized.
func (r *SeenRepo) MarkSeen(userID string, ids []string) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO seen_notices(user_id,notice_id) VALUES(?,?)`, userID, seenMarker); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO seen_notices(user_id,notice_id) VALUES(?,?)`, userID, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

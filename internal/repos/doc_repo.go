// Package repos persists the single application Document plus two small side
// channels (sessions, seen notices) in sqlite.
//
// The Document is rewritten wholesale on every mutation: concurrent writers
// each hold their own loaded copy and the last Save wins. There is no merge
// and no conflict detection; that limitation is accepted and pinned by tests.
package repos

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
)

// DocKey is the fixed storage namespace for the Document row.
const DocKey = "terra_db_v2"

// ErrStorageQuota is raised when the serialized Document no longer fits the
// local store. It propagates to callers of Save; there is no rollback.
var ErrStorageQuota = errors.New("stockage local saturé: réduisez la taille des photos ou déplacez les données vers un vrai backend")

// Store is the persistence boundary consumed by the directory and the
// ledger. Implementations own the Document; callers always receive fresh
// copies and write back whole sub-trees.
type Store interface {
	Load() (domain.Document, error)
	Save(domain.Document) error
	Replace(domain.Document) error
	LoadUsers() (map[string]domain.Account, error)
	SaveUsers(map[string]domain.Account) error
	LoadMarketplace() (domain.MarketplaceState, error)
	SaveMarketplace(domain.MarketplaceState) error
}

// Pusher receives a snapshot of every saved Document for remote mirroring.
type Pusher interface {
	Enqueue(domain.Document)
}

type DocRepo struct {
	DB       *sqlx.DB
	MaxBytes int
	pusher   Pusher
}

func NewDocRepo(db *sqlx.DB, maxBytes int) *DocRepo {
	return &DocRepo{DB: db, MaxBytes: maxBytes}
}

// SetPusher attaches the remote mirror. A nil pusher leaves the store fully
// local.
func (r *DocRepo) SetPusher(p Pusher) { r.pusher = p }

// Load materializes the Document. Missing, unparsable or shape-invalid
// bytes are replaced by the bundled seed; the default admin account and the
// farmerNotices sequence are restored if stripped, persisting the patch
// before returning.
func (r *DocRepo) Load() (domain.Document, error) {
	var body string
	err := r.DB.Get(&body, `SELECT body FROM documents WHERE key=?`, DocKey)
	if err != nil && err != sql.ErrNoRows {
		return domain.Document{}, err
	}

	if err == nil {
		var doc domain.Document
		if jsonErr := json.Unmarshal([]byte(body), &doc); jsonErr == nil && validShape(doc) {
			if patched := ensureInvariants(&doc); patched {
				if err := r.persist(doc); err != nil {
					return domain.Document{}, err
				}
			}
			return doc, nil
		}
	}

	seeded := SeedDocument()
	if err := r.persist(seeded); err != nil {
		return domain.Document{}, err
	}
	return seeded, nil
}

// Save persists the full Document, then hands a snapshot to the remote
// mirror. Remote failures never surface here; quota failures do.
func (r *DocRepo) Save(doc domain.Document) error {
	if err := r.persist(doc); err != nil {
		return err
	}
	if r.pusher != nil {
		r.pusher.Enqueue(doc)
	}
	return nil
}

// Replace persists a document pulled from the remote without echoing it
// back into the push queue. Invariants are re-applied first.
func (r *DocRepo) Replace(doc domain.Document) error {
	ensureInvariants(&doc)
	return r.persist(doc)
}

func (r *DocRepo) LoadUsers() (map[string]domain.Account, error) {
	doc, err := r.Load()
	if err != nil {
		return nil, err
	}
	return doc.Users, nil
}

func (r *DocRepo) SaveUsers(users map[string]domain.Account) error {
	doc, err := r.Load()
	if err != nil {
		return err
	}
	doc.Users = users
	return r.Save(doc)
}

func (r *DocRepo) LoadMarketplace() (domain.MarketplaceState, error) {
	doc, err := r.Load()
	if err != nil {
		return domain.MarketplaceState{}, err
	}
	return doc.Marketplace, nil
}

func (r *DocRepo) SaveMarketplace(state domain.MarketplaceState) error {
	doc, err := r.Load()
	if err != nil {
		return err
	}
	doc.Marketplace = state
	return r.Save(doc)
}

func (r *DocRepo) persist(doc domain.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if r.MaxBytes > 0 && len(b) > r.MaxBytes {
		return ErrStorageQuota
	}
	_, err = r.DB.Exec(`INSERT INTO documents(key,body,updated_at) VALUES(?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET body=excluded.body, updated_at=CURRENT_TIMESTAMP`, DocKey, string(b))
	if err != nil && strings.Contains(err.Error(), "disk is full") {
		return ErrStorageQuota
	}
	return err
}

// validShape requires users plus all three marketplace sequences except
// farmerNotices, which older documents lack and Load patches in.
func validShape(doc domain.Document) bool {
	return doc.Users != nil && doc.Marketplace.Listings != nil && doc.Marketplace.Requests != nil
}

func ensureInvariants(doc *domain.Document) bool {
	patched := false
	if doc.Users == nil {
		doc.Users = map[string]domain.Account{}
		patched = true
	}
	if _, ok := doc.Users[DefaultAdminID]; !ok {
		doc.Users[DefaultAdminID] = DefaultAdmin()
		patched = true
	}
	if doc.Marketplace.Listings == nil {
		doc.Marketplace.Listings = []domain.Listing{}
		patched = true
	}
	if doc.Marketplace.Requests == nil {
		doc.Marketplace.Requests = []domain.ResourceRequest{}
		patched = true
	}
	if doc.Marketplace.FarmerNotices == nil {
		doc.Marketplace.FarmerNotices = []domain.FarmerNotice{}
		patched = true
	}
	return patched
}

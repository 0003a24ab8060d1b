package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	"github.com/Uchiwa75567/TerraLinkk/internal/repos"
)

const passwordMinLength = 6

// AuthService is the account directory: registration and login over the
// users sub-tree, plus the sid session side channel.
type AuthService struct {
	Store    repos.Store
	Sessions *repos.SessionRepo
}

// AccountID derives the stable account id from an email: lowercase, every
// non-alphanumeric replaced by an underscore. The default admin id follows
// the same rule.
func AccountID(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	var b strings.Builder
	b.WriteString("usr_")
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword is a single client-grade SHA-256 pass. The document format
// stores these digests, so they must stay hex-encoded and comparable.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Login verifies credentials and persists the session under sid. Accounts
// predating password digests get the incoming digest backfilled on their
// first successful login.
func (s *AuthService) Login(sid, email, password string, role domain.Role) (*domain.SessionUser, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" || password == "" || role == "" {
		return nil, ErrValidation
	}

	users, err := s.Store.LoadUsers()
	if err != nil {
		return nil, err
	}
	account, ok := users[AccountID(cleanEmail)]
	if !ok {
		return nil, ErrNotFound
	}
	if account.Role != role {
		return nil, fmt.Errorf("%w: compte %s", ErrRoleMismatch, account.Role)
	}

	digest := HashPassword(password)
	if account.PasswordHash == "" {
		account.PasswordHash = digest
		account.UpdatedAt = domain.Timestamp(time.Now())
		users[account.ID] = account
		if err := s.Store.SaveUsers(users); err != nil {
			return nil, err
		}
	} else if account.PasswordHash != digest {
		return nil, ErrInvalidCredentials
	}

	session := account.Session()
	if err := s.Sessions.Bind(sid, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Register creates an account and opens a session. Admin accounts cannot
// self-register; they only exist through the seeded default admin.
func (s *AuthService) Register(sid, name, email, password string, role domain.Role, profile map[string]string, avatar string) (*domain.SessionUser, error) {
	cleanEmail := normalizeEmail(email)
	if strings.TrimSpace(name) == "" || cleanEmail == "" || role == "" {
		return nil, ErrValidation
	}
	if role == domain.RoleAdmin {
		return nil, ErrForbiddenRole
	}
	if len(password) < passwordMinLength {
		return nil, ErrPasswordTooShort
	}

	if avatar == "" {
		avatar = "https://api.dicebear.com/7.x/avataaars/svg?seed=" + cleanEmail
	}
	now := domain.Timestamp(time.Now())
	account := domain.Account{
		ID:           AccountID(cleanEmail),
		Name:         name,
		Email:        cleanEmail,
		Role:         role,
		Avatar:       avatar,
		Profile:      profile,
		PasswordHash: HashPassword(password),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	users, err := s.Store.LoadUsers()
	if err != nil {
		return nil, err
	}
	if _, exists := users[account.ID]; exists {
		return nil, ErrDuplicateAccount
	}
	users[account.ID] = account
	if err := s.Store.SaveUsers(users); err != nil {
		return nil, err
	}

	session := account.Session()
	if err := s.Sessions.Bind(sid, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Logout drops the session record. The Document is untouched.
func (s *AuthService) Logout(sid string) error {
	return s.Sessions.Unbind(sid)
}

// CurrentUser resolves the session for middleware and templates.
func (s *AuthService) CurrentUser(sid string) (*domain.SessionUser, error) {
	return s.Sessions.User(sid)
}

package validate

import (
	"regexp"
	"strings"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,80}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 80 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a displayable name.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 60 {
		return "", false
	}
	return s, true
}

// Password only enforces the registration length floor; real credential
// policy is out of scope here.
func Password(s string) bool {
	return len(s) >= 6 && len(s) <= 72
}

// Role accepts the three self-registrable roles plus admin (admin is
// rejected later at the registration boundary, not here).
func Role(s string) (domain.Role, bool) {
	switch domain.Role(strings.TrimSpace(s)) {
	case domain.RoleFarmer:
		return domain.RoleFarmer, true
	case domain.RoleSeller:
		return domain.RoleSeller, true
	case domain.RoleOwner:
		return domain.RoleOwner, true
	case domain.RoleAdmin:
		return domain.RoleAdmin, true
	}
	return "", false
}

// ID validates ledger and account identifiers.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func ListingType(s string) (domain.ListingType, bool) {
	switch domain.ListingType(strings.TrimSpace(s)) {
	case domain.TypeSeed:
		return domain.TypeSeed, true
	case domain.TypeTractor:
		return domain.TypeTractor, true
	}
	return "", false
}

// ModerationStatus only accepts the two terminal states a moderator can
// assign.
func ModerationStatus(s string) (domain.Status, bool) {
	switch domain.Status(strings.TrimSpace(s)) {
	case domain.StatusApproved:
		return domain.StatusApproved, true
	case domain.StatusRejected:
		return domain.StatusRejected, true
	}
	return "", false
}

package domain

// Role identifies how an account interacts with the marketplace.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleSeller Role = "seller"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
)

// Account is the stored form of a user inside the Document. Profile keys
// vary by role (contact, localisation, culturesPrincipales, entreprise,
// regionService, ...) so the record stays an open string map.
type Account struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Role         Role              `json:"role"`
	Avatar       string            `json:"avatar,omitempty"`
	Profile      map[string]string `json:"profile,omitempty"`
	PasswordHash string            `json:"passwordHash,omitempty"`
	CreatedAt    string            `json:"createdAt"`
	UpdatedAt    string            `json:"updatedAt"`
}

// SessionUser is the account projection persisted for a session. It never
// carries the password digest.
type SessionUser struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Role    Role              `json:"role"`
	Avatar  string            `json:"avatar,omitempty"`
	Profile map[string]string `json:"profile,omitempty"`
}

// Session returns the projection stored in the session side channel.
func (a Account) Session() SessionUser {
	return SessionUser{
		ID:      a.ID,
		Name:    a.Name,
		Email:   a.Email,
		Role:    a.Role,
		Avatar:  a.Avatar,
		Profile: a.Profile,
	}
}

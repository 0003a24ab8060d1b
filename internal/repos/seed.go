package repos

import "github.com/Uchiwa75567/TerraLinkk/internal/domain"

// DefaultAdminID is derived from the default admin email the same way
// account ids are (usr_ + normalized email).
const DefaultAdminID = "usr_admin_terralink_com"

// DefaultAdmin returns the reserved administrator account. It is re-inserted
// on every load if the persisted document lost it.
func DefaultAdmin() domain.Account {
	return domain.Account{
		ID:     DefaultAdminID,
		Name:   "Admin TerraLink",
		Email:  "admin@terralink.com",
		Role:   domain.RoleAdmin,
		Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=admin@terralink.com",
		Profile: map[string]string{
			"contact":      "+221700000000",
			"localisation": "Dakar, Sénégal",
			"departement":  "Administration",
		},
		PasswordHash: "e86f78a8a3caf0b60d8e74e5942aa6d86dc150cd3c03338aef25b7d2d7e3acc7",
		CreatedAt:    "2026-02-28T00:00:00.000Z",
		UpdatedAt:    "2026-02-28T00:00:00.000Z",
	}
}

// SeedDocument is the bundled document installed when the persisted state is
// missing, unparsable or structurally invalid.
func SeedDocument() domain.Document {
	admin := DefaultAdmin()
	return domain.Document{
		Users: map[string]domain.Account{admin.ID: admin},
		Marketplace: domain.MarketplaceState{
			Listings:      []domain.Listing{},
			Requests:      []domain.ResourceRequest{},
			FarmerNotices: []domain.FarmerNotice{},
		},
	}
}

package services

import (
	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
)

// demoProfiles are the built-in directory entries shown before anyone has
// registered. Registered accounts with the same id take precedence.
var demoProfiles = []domain.SessionUser{
	{
		ID:     "demo_farmer_1",
		Name:   "Mamadou Ndiaye",
		Email:  "mamadou.farmer@terralink.demo",
		Role:   domain.RoleFarmer,
		Avatar: "https://images.pexels.com/photos/2382904/pexels-photo-2382904.jpeg?auto=compress&cs=tinysrgb&w=600",
		Profile: map[string]string{
			"contact":             "+221 77 100 20 30",
			"localisation":        "Thiès, Sénégal",
			"culturesPrincipales": "Mil, arachide",
			"tailleExploitation":  "18 ha",
			"nombreEmployes":      "9",
			"certifications":      "Agriculture durable locale",
		},
	},
	{
		ID:     "demo_seller_1",
		Name:   "Awa Seeds Market",
		Email:  "awa.seller@terralink.demo",
		Role:   domain.RoleSeller,
		Avatar: "https://images.pexels.com/photos/842711/pexels-photo-842711.jpeg?auto=compress&cs=tinysrgb&w=600",
		Profile: map[string]string{
			"contact":            "+221 76 220 10 11",
			"localisation":       "Kaolack, Sénégal",
			"entreprise":         "Awa Agro Distribution",
			"categoriesProduits": "Semences maïs, sorgho, niébé",
			"capaciteStock":      "1200 sacs",
			"certifications":     "ISO semences régionales",
		},
	},
	{
		ID:     "demo_owner_1",
		Name:   "Cheikh Rentals",
		Email:  "cheikh.owner@terralink.demo",
		Role:   domain.RoleOwner,
		Avatar: "https://images.pexels.com/photos/1268122/pexels-photo-1268122.jpeg?auto=compress&cs=tinysrgb&w=600",
		Profile: map[string]string{
			"contact":             "+221 78 450 00 12",
			"localisation":        "Saint-Louis, Sénégal",
			"regionService":       "Nord et vallée du fleuve",
			"machinesDisponibles": "3 tracteurs, 2 remorques",
			"tarifHoraireMoyen":   "35€/h",
			"certifications":      "Maintenance certifiée",
		},
	},
}

// userLoader is the slice of the store the directory needs.
type userLoader interface {
	LoadUsers() (map[string]domain.Account, error)
}

// ProfileService exposes the public directory: demo entries merged with
// every registered account that has a role, de-duplicated by id.
type ProfileService struct {
	Store userLoader
}

func NewProfileService(store userLoader) *ProfileService { return &ProfileService{Store: store} }

func (s *ProfileService) PublicProfiles() ([]domain.SessionUser, error) {
	users, err := s.Store.LoadUsers()
	if err != nil {
		return nil, err
	}
	merged := make(map[string]domain.SessionUser, len(demoProfiles)+len(users))
	order := make([]string, 0, len(demoProfiles)+len(users))
	for _, p := range demoProfiles {
		merged[p.ID] = p
		order = append(order, p.ID)
	}
	for id, a := range users {
		if a.ID == "" || a.Role == "" {
			continue
		}
		if _, known := merged[id]; !known {
			order = append(order, id)
		}
		merged[id] = a.Session()
	}
	out := make([]domain.SessionUser, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	return out, nil
}

func (s *ProfileService) PublicProfileByID(id string) (*domain.SessionUser, error) {
	profiles, err := s.PublicProfiles()
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID == id {
			return &profiles[i], nil
		}
	}
	return nil, nil
}

// RoleLabel is the French display label used across the directory pages.
func RoleLabel(role domain.Role) string {
	switch role {
	case domain.RoleFarmer:
		return "Agriculteur"
	case domain.RoleSeller:
		return "Vendeur"
	case domain.RoleOwner:
		return "Propriétaire"
	case domain.RoleAdmin:
		return "Admin"
	default:
		return "Utilisateur"
	}
}

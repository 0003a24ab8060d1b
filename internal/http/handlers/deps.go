package handlers

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Uchiwa75567/TerraLinkk/internal/repos"
	"github.com/Uchiwa75567/TerraLinkk/internal/services"
)

type Deps struct {
	AuthHandler     *AuthHandler
	PublicHandler   *PublicHandler
	ProfilesHandler *ProfilesHandler
	FarmerHandler   *FarmerHandler
	SellerHandler   *SellerHandler
	OwnerHandler    *OwnerHandler
	AdminHandler    *AdminHandler
	SyncAPIHandler  *SyncAPIHandler

	Auth   *services.AuthService
	Market *services.MarketplaceService
}

func NewDeps(store repos.Store, sessions *repos.SessionRepo, seen *repos.SeenRepo, cache *redis.Client, cacheTTL time.Duration) *Deps {
	authSvc := &services.AuthService{Store: store, Sessions: sessions}
	market := &services.MarketplaceService{Store: store, Cache: cache, CacheTTL: cacheTTL}
	watcher := services.NewNoticeWatcher(market, seen)
	profiles := services.NewProfileService(store)

	return &Deps{
		AuthHandler:     &AuthHandler{Auth: authSvc},
		PublicHandler:   &PublicHandler{Market: market},
		ProfilesHandler: &ProfilesHandler{Profiles: profiles},
		FarmerHandler:   &FarmerHandler{Market: market, Watcher: watcher},
		SellerHandler:   &SellerHandler{Market: market},
		OwnerHandler:    &OwnerHandler{Market: market},
		AdminHandler:    &AdminHandler{Market: market},
		SyncAPIHandler:  &SyncAPIHandler{Store: store},

		Auth:   authSvc,
		Market: market,
	}
}

package services_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	"github.com/Uchiwa75567/TerraLinkk/internal/repos"
	"github.com/Uchiwa75567/TerraLinkk/internal/services"
)

func newMarket(t *testing.T) (*services.MarketplaceService, repos.Store) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store := repos.NewDocRepo(db, 0)
	return services.NewMarketplaceService(store), store
}

func intp(n int) *int { return &n }

func TestCreateListingStartsPending(t *testing.T) {
	market, _ := newMarket(t)

	first, err := market.CreateListing(services.ListingInput{
		Type: domain.TypeSeed, Name: "Maïs hybride", Price: "1500 FCFA/kg",
		Location: "Kaolack", Stock: intp(10), OwnerID: "usr_awa", OwnerName: "Awa",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(first.ID, "lst-") {
		t.Fatalf("bad listing id: %s", first.ID)
	}
	if first.Status != domain.StatusPending || first.Rating != 4.5 {
		t.Fatalf("bad new listing: %+v", first)
	}

	second, err := market.CreateListing(services.ListingInput{
		Type: domain.TypeTractor, Name: "Tracteur 90cv", OwnerID: "usr_cheikh", OwnerName: "Cheikh",
	})
	if err != nil {
		t.Fatal(err)
	}

	mine, err := market.OwnerListings("usr_cheikh", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != second.ID {
		t.Fatalf("owner filter wrong: %+v", mine)
	}

	pending, err := market.PendingListings()
	if err != nil {
		t.Fatal(err)
	}
	// Newest first.
	if len(pending) != 2 || pending[0].ID != second.ID {
		t.Fatalf("want newest-first pending pair, got %+v", pending)
	}
}

func TestModerationIsOneWay(t *testing.T) {
	market, _ := newMarket(t)

	l, err := market.CreateListing(services.ListingInput{Type: domain.TypeSeed, Name: "Mil", OwnerID: "usr_awa"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := market.UpdateListingStatus(l.ID, domain.StatusPending); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("pending is not a moderation target, got %v", err)
	}

	changed, err := market.UpdateListingStatus(l.ID, domain.StatusApproved)
	if err != nil || !changed {
		t.Fatalf("approve failed: changed=%v err=%v", changed, err)
	}

	// Terminal states are final.
	changed, err = market.UpdateListingStatus(l.ID, domain.StatusRejected)
	if err != nil || changed {
		t.Fatalf("approved listing must not flip: changed=%v err=%v", changed, err)
	}
	got, err := market.FindListing(l.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.StatusApproved {
		t.Fatalf("status flipped to %s", got.Status)
	}

	changed, err = market.UpdateListingStatus("lst-0-zzzzzz", domain.StatusApproved)
	if err != nil || changed {
		t.Fatalf("unknown id must be a no-op: changed=%v err=%v", changed, err)
	}
}

func TestApprovedResourcesWaitForModeration(t *testing.T) {
	market, _ := newMarket(t)

	l, err := market.CreateListing(services.ListingInput{
		Type: domain.TypeSeed, Name: "Semence maïs", Stock: intp(10), OwnerID: "usr_awa", OwnerName: "Awa",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := market.CreateListing(services.ListingInput{Type: domain.TypeTractor, Name: "Tracteur", OwnerID: "usr_cheikh"}); err != nil {
		t.Fatal(err)
	}

	visible, err := market.ApprovedResources(domain.TypeSeed)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 0 {
		t.Fatalf("pending listing already visible: %+v", visible)
	}

	if _, err := market.UpdateListingStatus(l.ID, domain.StatusApproved); err != nil {
		t.Fatal(err)
	}
	visible, err = market.ApprovedResources(domain.TypeSeed)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 1 || visible[0].ID != l.ID {
		t.Fatalf("approved semence missing: %+v", visible)
	}
	if visible[0].Stock == nil || *visible[0].Stock != 10 {
		t.Fatalf("stock lost through moderation: %+v", visible[0].Stock)
	}
}

func TestRequestCopiesProviderFromListing(t *testing.T) {
	market, _ := newMarket(t)

	l, err := market.CreateListing(services.ListingInput{
		Type: domain.TypeTractor, Name: "Tracteur 90cv", OwnerID: "usr_cheikh", OwnerName: "Cheikh Rentals",
	})
	if err != nil {
		t.Fatal(err)
	}

	req, err := market.CreateRequest(services.RequestInput{ListingID: l.ID, FarmerID: "usr_fatou", FarmerName: "Fatou"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(req.ID, "req-") || req.Status != domain.StatusPending {
		t.Fatalf("bad new request: %+v", req)
	}
	if req.ProviderID != "usr_cheikh" || req.ProviderName != "Cheikh Rentals" || req.ListingType != domain.TypeTractor {
		t.Fatalf("provider not copied from listing: %+v", req)
	}

	if _, err := market.CreateRequest(services.RequestInput{ListingID: "lst-0-zzzzzz", FarmerID: "usr_fatou"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("missing listing should fail validation, got %v", err)
	}

	byProvider, err := market.ProviderRequests("usr_cheikh", domain.TypeTractor)
	if err != nil {
		t.Fatal(err)
	}
	if len(byProvider) != 1 || byProvider[0].ID != req.ID {
		t.Fatalf("provider inbox wrong: %+v", byProvider)
	}
	byFarmer, err := market.FarmerRequests("usr_fatou")
	if err != nil {
		t.Fatal(err)
	}
	if len(byFarmer) != 1 {
		t.Fatalf("farmer outbox wrong: %+v", byFarmer)
	}

	changed, err := market.UpdateRequestStatus(req.ID, domain.StatusApproved)
	if err != nil || !changed {
		t.Fatalf("approve request: changed=%v err=%v", changed, err)
	}
	changed, err = market.UpdateRequestStatus(req.ID, domain.StatusRejected)
	if err != nil || changed {
		t.Fatalf("approved request must not flip: changed=%v err=%v", changed, err)
	}
}

func TestAnnouncementsFeedMergesAndSorts(t *testing.T) {
	market, store := newMarket(t)

	state := domain.MarketplaceState{
		Listings: []domain.Listing{
			{ID: "lst-2", Type: domain.TypeTractor, Name: "Tracteur 90cv", Price: "35€/h",
				OwnerName: "Cheikh", Status: domain.StatusApproved, CreatedAt: "2026-03-02T00:00:00.000Z"},
			{ID: "lst-x", Type: domain.TypeSeed, Name: "Semence", Status: domain.StatusApproved,
				CreatedAt: "2026-03-05T00:00:00.000Z"},
		},
		Requests: []domain.ResourceRequest{},
		FarmerNotices: []domain.FarmerNotice{
			{ID: "notice-3", Title: "Recherche semences", MainCrop: "Mil", FarmerName: "Fatou",
				Status: domain.StatusApproved, CreatedAt: "2026-03-03T00:00:00.000Z"},
			{ID: "notice-1", Title: "Visite ferme", MainCrop: "Maïs", FarmerName: "Moussa",
				Status: domain.StatusApproved, CreatedAt: "2026-03-01T00:00:00.000Z"},
			{ID: "notice-p", Title: "En attente", Status: domain.StatusPending, CreatedAt: "2026-03-04T00:00:00.000Z"},
			{ID: "notice-r", Title: "Refusée", Status: domain.StatusRejected, CreatedAt: "2026-03-04T00:00:00.000Z"},
		},
	}
	if err := store.SaveMarketplace(state); err != nil {
		t.Fatal(err)
	}

	feed, err := market.ApprovedAnnouncements()
	if err != nil {
		t.Fatal(err)
	}
	// Approved notices plus approved tracteur listings only, newest first.
	wantOrder := []string{"notice-3", "lst-2", "notice-1"}
	if len(feed) != len(wantOrder) {
		t.Fatalf("want %d entries, got %+v", len(wantOrder), feed)
	}
	for i, id := range wantOrder {
		if feed[i].ID != id {
			t.Fatalf("position %d: want %s, got %s", i, id, feed[i].ID)
		}
	}
	if feed[0].Source != "farmer_notice" || feed[0].Subtitle != "Besoin: Mil" {
		t.Fatalf("bad notice projection: %+v", feed[0])
	}
	if feed[1].Source != "owner_listing" || feed[1].Subtitle != "Tarif: 35€/h" {
		t.Fatalf("bad listing projection: %+v", feed[1])
	}
}

func TestNoticeModerationDrivesFeed(t *testing.T) {
	market, _ := newMarket(t)

	n, err := market.CreateFarmerNotice(services.NoticeInput{
		FarmerID: "usr_fatou", FarmerName: "Fatou", Title: "Recherche semences", MainCrop: "Mil",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(n.ID, "notice-") || n.Status != domain.StatusPending {
		t.Fatalf("bad new notice: %+v", n)
	}

	feed, err := market.ApprovedAnnouncements()
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 0 {
		t.Fatalf("pending notice leaked into the feed: %+v", feed)
	}

	if _, err := market.UpdateFarmerNoticeStatus(n.ID, domain.StatusApproved); err != nil {
		t.Fatal(err)
	}
	feed, err = market.ApprovedAnnouncements()
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 1 || feed[0].ID != n.ID {
		t.Fatalf("approved notice missing from feed: %+v", feed)
	}
}

func TestStatsCounters(t *testing.T) {
	market, _ := newMarket(t)

	l, err := market.CreateListing(services.ListingInput{Type: domain.TypeSeed, Name: "Mil", OwnerID: "usr_awa"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := market.CreateListing(services.ListingInput{Type: domain.TypeTractor, Name: "Tracteur", OwnerID: "usr_cheikh"}); err != nil {
		t.Fatal(err)
	}
	if _, err := market.UpdateListingStatus(l.ID, domain.StatusApproved); err != nil {
		t.Fatal(err)
	}
	if _, err := market.CreateRequest(services.RequestInput{ListingID: l.ID, FarmerID: "usr_fatou"}); err != nil {
		t.Fatal(err)
	}
	if _, err := market.CreateFarmerNotice(services.NoticeInput{FarmerID: "usr_fatou", Title: "Visite"}); err != nil {
		t.Fatal(err)
	}

	stats, err := market.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.ListingsTotal != 2 || stats.ListingsPending != 1 || stats.RequestsTotal != 1 || stats.FarmerNoticesPending != 1 {
		t.Fatalf("bad counters: %+v", stats)
	}
	if stats.UsersApprox != 4829 {
		t.Fatalf("usersApprox changed: %d", stats.UsersApprox)
	}
}

func TestAnnouncementsCache(t *testing.T) {
	market, _ := newMarket(t)
	mr := miniredis.RunT(t)
	market.Cache = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	market.CacheTTL = time.Minute

	if _, err := market.ApprovedAnnouncements(); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("terralink:announcements") {
		t.Fatalf("feed not cached")
	}

	// Any mutation invalidates the cached feed.
	n, err := market.CreateFarmerNotice(services.NoticeInput{FarmerID: "usr_fatou", Title: "Visite", MainCrop: "Mil"})
	if err != nil {
		t.Fatal(err)
	}
	if mr.Exists("terralink:announcements") {
		t.Fatalf("cache not invalidated on mutation")
	}

	if _, err := market.UpdateFarmerNoticeStatus(n.ID, domain.StatusApproved); err != nil {
		t.Fatal(err)
	}
	feed, err := market.ApprovedAnnouncements()
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 1 || feed[0].ID != n.ID {
		t.Fatalf("recomputed feed wrong: %+v", feed)
	}

	feed2, err := market.ApprovedAnnouncements()
	if err != nil {
		t.Fatal(err)
	}
	if len(feed2) != 1 {
		t.Fatalf("cached read wrong: %+v", feed2)
	}
}

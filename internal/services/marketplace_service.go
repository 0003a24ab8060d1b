package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	"github.com/Uchiwa75567/TerraLinkk/internal/repos"
)

const (
	defaultListingRating = 4.5
	usersApprox          = 4829
	announcementsKey     = "terralink:announcements"
)

// MarketplaceService is the ledger: creation and moderation of listings,
// resource requests and farmer notices, plus the read projections the
// dashboards consume. Every mutation rewrites the marketplace sub-tree,
// which triggers the remote push queue.
//
// Cache is optional; when set, the approved-announcements feed is served
// from Redis and invalidated on every mutation.
type MarketplaceService struct {
	Store    repos.Store
	Cache    *redis.Client
	CacheTTL time.Duration
}

func NewMarketplaceService(store repos.Store) *MarketplaceService {
	return &MarketplaceService{Store: store}
}

// newID builds a type-prefixed, roughly time-ordered unique id without a
// central counter.
func newID(prefix string) string {
	suffix := make([]byte, 3)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(suffix))
}

// ---------- mutations ----------

type ListingInput struct {
	Type      domain.ListingType
	Name      string
	Price     string
	Location  string
	Img       string
	Stock     *int
	OwnerID   string
	OwnerName string
}

// CreateListing inserts a pending listing at the head of the sequence. The
// rating is a fixed placeholder; there is no mechanism to change it later.
func (s *MarketplaceService) CreateListing(in ListingInput) (domain.Listing, error) {
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return domain.Listing{}, err
	}
	listing := domain.Listing{
		ID:        newID("lst"),
		Type:      in.Type,
		Name:      in.Name,
		Price:     in.Price,
		Location:  in.Location,
		Rating:    defaultListingRating,
		Img:       in.Img,
		Stock:     in.Stock,
		OwnerID:   in.OwnerID,
		OwnerName: in.OwnerName,
		Status:    domain.StatusPending,
		CreatedAt: domain.Timestamp(time.Now()),
	}
	state.Listings = append([]domain.Listing{listing}, state.Listings...)
	if err := s.saveState(state); err != nil {
		return domain.Listing{}, err
	}
	return listing, nil
}

type RequestInput struct {
	ListingID  string
	FarmerID   string
	FarmerName string
}

// CreateRequest records a farmer asking for a listing. The listing must
// exist; provider identity is copied from it.
func (s *MarketplaceService) CreateRequest(in RequestInput) (domain.ResourceRequest, error) {
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return domain.ResourceRequest{}, err
	}
	var listing *domain.Listing
	for i := range state.Listings {
		if state.Listings[i].ID == in.ListingID {
			listing = &state.Listings[i]
			break
		}
	}
	if listing == nil {
		return domain.ResourceRequest{}, fmt.Errorf("%w: annonce introuvable", ErrValidation)
	}
	request := domain.ResourceRequest{
		ID:           newID("req"),
		ListingID:    listing.ID,
		ListingName:  listing.Name,
		ListingType:  listing.Type,
		FarmerID:     in.FarmerID,
		FarmerName:   in.FarmerName,
		ProviderID:   listing.OwnerID,
		ProviderName: listing.OwnerName,
		Status:       domain.StatusPending,
		CreatedAt:    domain.Timestamp(time.Now()),
	}
	state.Requests = append([]domain.ResourceRequest{request}, state.Requests...)
	if err := s.saveState(state); err != nil {
		return domain.ResourceRequest{}, err
	}
	return request, nil
}

type NoticeInput struct {
	FarmerID   string
	FarmerName string
	Title      string
	Details    string
	Location   string
	MainCrop   string
	FarmPhoto  string
}

func (s *MarketplaceService) CreateFarmerNotice(in NoticeInput) (domain.FarmerNotice, error) {
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return domain.FarmerNotice{}, err
	}
	notice := domain.FarmerNotice{
		ID:         newID("notice"),
		FarmerID:   in.FarmerID,
		FarmerName: in.FarmerName,
		Title:      in.Title,
		Details:    in.Details,
		Location:   in.Location,
		MainCrop:   in.MainCrop,
		FarmPhoto:  in.FarmPhoto,
		Status:     domain.StatusPending,
		CreatedAt:  domain.Timestamp(time.Now()),
	}
	state.FarmerNotices = append([]domain.FarmerNotice{notice}, state.FarmerNotices...)
	if err := s.saveState(state); err != nil {
		return domain.FarmerNotice{}, err
	}
	return notice, nil
}

// UpdateListingStatus moves a pending listing to approved or rejected.
// Terminal states are final; a non-pending listing or an unknown id is a
// no-op. Returns whether anything changed.
func (s *MarketplaceService) UpdateListingStatus(id string, status domain.Status) (bool, error) {
	if !terminal(status) {
		return false, fmt.Errorf("%w: statut %q", ErrValidation, status)
	}
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return false, err
	}
	changed := false
	for i := range state.Listings {
		if state.Listings[i].ID == id && state.Listings[i].Status == domain.StatusPending {
			state.Listings[i].Status = status
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	return true, s.saveState(state)
}

func (s *MarketplaceService) UpdateRequestStatus(id string, status domain.Status) (bool, error) {
	if !terminal(status) {
		return false, fmt.Errorf("%w: statut %q", ErrValidation, status)
	}
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return false, err
	}
	changed := false
	for i := range state.Requests {
		if state.Requests[i].ID == id && state.Requests[i].Status == domain.StatusPending {
			state.Requests[i].Status = status
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	return true, s.saveState(state)
}

func (s *MarketplaceService) UpdateFarmerNoticeStatus(id string, status domain.Status) (bool, error) {
	if !terminal(status) {
		return false, fmt.Errorf("%w: statut %q", ErrValidation, status)
	}
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return false, err
	}
	changed := false
	for i := range state.FarmerNotices {
		if state.FarmerNotices[i].ID == id && state.FarmerNotices[i].Status == domain.StatusPending {
			state.FarmerNotices[i].Status = status
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	return true, s.saveState(state)
}

func terminal(status domain.Status) bool {
	return status == domain.StatusApproved || status == domain.StatusRejected
}

func (s *MarketplaceService) saveState(state domain.MarketplaceState) error {
	if err := s.Store.SaveMarketplace(state); err != nil {
		return err
	}
	if s.Cache != nil {
		_ = s.Cache.Del(context.Background(), announcementsKey).Err()
	}
	return nil
}

// ---------- queries ----------

// ApprovedResources lists approved listings, optionally filtered by type.
func (s *MarketplaceService) ApprovedResources(typ domain.ListingType) ([]domain.Listing, error) {
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return nil, err
	}
	out := []domain.Listing{}
	for _, l := range state.Listings {
		if l.Status == domain.StatusApproved && (typ == "" || l.Type == typ) {
			out = append(out, l)
		}
	}
	return out, nil
}

// FindListing looks a listing up by id regardless of status.
func (s *MarketplaceService) FindListing(id string) (*domain.Listing, error) {
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return nil, err
	}
	for i := range state.Listings {
		if state.Listings[i].ID == id {
			return &state.Listings[i], nil
		}
	}
	return nil, nil
}

func (s *MarketplaceService) OwnerListings(ownerID string, typ domain.ListingType) ([]domain.Listing, error) {
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return nil, err
	}
	out := []domain.Listing{}
	for _, l := range state.Listings {
		if l.OwnerID == ownerID && (typ == "" || l.Type == typ) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *MarketplaceService) PendingListings() ([]domain.Listing, error) {
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return nil, err
	}
	out := []domain.Listing{}
	for _, l := range state.Listings {
		if l.Status == domain.StatusPending {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *MarketplaceService) ProviderRequests(providerID string, typ domain.ListingType) ([]domain.ResourceRequest, error) {
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return nil, err
	}
	out := []domain.ResourceRequest{}
	for _, r := range state.Requests {
		if r.ProviderID == providerID && (typ == "" || r.ListingType == typ) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MarketplaceService) FarmerRequests(farmerID string) ([]domain.ResourceRequest, error) {
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return nil, err
	}
	out := []domain.ResourceRequest{}
	for _, r := range state.Requests {
		if r.FarmerID == farmerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindRequest looks a request up by id regardless of status.
func (s *MarketplaceService) FindRequest(id string) (*domain.ResourceRequest, error) {
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return nil, err
	}
	for i := range state.Requests {
		if state.Requests[i].ID == id {
			return &state.Requests[i], nil
		}
	}
	return nil, nil
}

// FarmerNotices returns all notices, or only one farmer's when farmerID is
// set.
func (s *MarketplaceService) FarmerNotices(farmerID string) ([]domain.FarmerNotice, error) {
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return nil, err
	}
	if farmerID == "" {
		return state.FarmerNotices, nil
	}
	out := []domain.FarmerNotice{}
	for _, n := range state.FarmerNotices {
		if n.FarmerID == farmerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *MarketplaceService) PendingFarmerNotices() ([]domain.FarmerNotice, error) {
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return nil, err
	}
	out := []domain.FarmerNotice{}
	for _, n := range state.FarmerNotices {
		if n.Status == domain.StatusPending {
			out = append(out, n)
		}
	}
	return out, nil
}

// ApprovedAnnouncements merges approved farmer notices and approved tractor
// listings into one feed, newest first. Served from the cache when one is
// configured.
func (s *MarketplaceService) ApprovedAnnouncements() ([]domain.ApprovedAnnouncement, error) {
	if s.Cache != nil {
		if raw, err := s.Cache.Get(context.Background(), announcementsKey).Bytes(); err == nil {
			var cached []domain.ApprovedAnnouncement
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return nil, err
	}
	feed := []domain.ApprovedAnnouncement{}
	for _, n := range state.FarmerNotices {
		if n.Status != domain.StatusApproved {
			continue
		}
		feed = append(feed, domain.ApprovedAnnouncement{
			ID:         n.ID,
			Source:     "farmer_notice",
			Title:      n.Title,
			Subtitle:   "Besoin: " + n.MainCrop,
			Location:   n.Location,
			Image:      n.FarmPhoto,
			AuthorName: n.FarmerName,
			CreatedAt:  n.CreatedAt,
		})
	}
	for _, l := range state.Listings {
		if l.Status != domain.StatusApproved || l.Type != domain.TypeTractor {
			continue
		}
		feed = append(feed, domain.ApprovedAnnouncement{
			ID:         l.ID,
			Source:     "owner_listing",
			Title:      l.Name,
			Subtitle:   "Tarif: " + l.Price,
			Location:   l.Location,
			Image:      l.Img,
			AuthorName: l.OwnerName,
			CreatedAt:  l.CreatedAt,
		})
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return domain.ParseTimestamp(feed[i].CreatedAt).After(domain.ParseTimestamp(feed[j].CreatedAt))
	})

	if s.Cache != nil {
		if raw, err := json.Marshal(feed); err == nil {
			ttl := s.CacheTTL
			if ttl <= 0 {
				ttl = 30 * time.Second
			}
			_ = s.Cache.SetEx(context.Background(), announcementsKey, raw, ttl).Err()
		}
	}
	return feed, nil
}

// Stats aggregates dashboard counters. usersApprox is the marketing number
// the landing page always displayed.
func (s *MarketplaceService) Stats() (domain.Stats, error) {
	state, err := s.Store.LoadMarketplace()
	if err != nil {
		return domain.Stats{}, err
	}
	stats := domain.Stats{UsersApprox: usersApprox, ListingsTotal: len(state.Listings), RequestsTotal: len(state.Requests)}
	for _, l := range state.Listings {
		if l.Status == domain.StatusPending {
			stats.ListingsPending++
		}
	}
	for _, n := range state.FarmerNotices {
		if n.Status == domain.StatusPending {
			stats.FarmerNoticesPending++
		}
	}
	return stats, nil
}

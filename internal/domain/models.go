package domain

import "time"

// ListingType distinguishes seed sale listings from tractor rentals.
type ListingType string

const (
	TypeSeed    ListingType = "semence"
	TypeTractor ListingType = "tracteur"
)

// Status is the moderation lifecycle shared by listings, requests and
// farmer notices. pending is the only non-terminal state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Listing is a resource published by a seller (semence) or owner (tracteur).
type Listing struct {
	ID        string      `json:"id"`
	Type      ListingType `json:"type"`
	Name      string      `json:"name"`
	Price     string      `json:"price"`
	Location  string      `json:"location"`
	Rating    float64     `json:"rating"`
	Img       string      `json:"img"`
	Stock     *int        `json:"stock,omitempty"`
	OwnerID   string      `json:"ownerId"`
	OwnerName string      `json:"ownerName"`
	Status    Status      `json:"status"`
	CreatedAt string      `json:"createdAt"`
}

// ResourceRequest is a farmer asking a provider for one of its listings.
type ResourceRequest struct {
	ID           string      `json:"id"`
	ListingID    string      `json:"listingId"`
	ListingName  string      `json:"listingName"`
	ListingType  ListingType `json:"listingType"`
	FarmerID     string      `json:"farmerId"`
	FarmerName   string      `json:"farmerName"`
	ProviderID   string      `json:"providerId"`
	ProviderName string      `json:"providerName"`
	Status       Status      `json:"status"`
	CreatedAt    string      `json:"createdAt"`
}

// FarmerNotice is a farmer announcement (need for a crop, farm visit, ...).
type FarmerNotice struct {
	ID         string `json:"id"`
	FarmerID   string `json:"farmerId"`
	FarmerName string `json:"farmerName"`
	Title      string `json:"title"`
	Details    string `json:"details"`
	Location   string `json:"location"`
	MainCrop   string `json:"mainCrop"`
	FarmPhoto  string `json:"farmPhoto"`
	Status     Status `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

// MarketplaceState is the marketplace sub-tree of the Document. All three
// sequences are ordered newest first.
type MarketplaceState struct {
	Listings      []Listing         `json:"listings"`
	Requests      []ResourceRequest `json:"requests"`
	FarmerNotices []FarmerNotice    `json:"farmerNotices"`
}

// Document is the whole persisted application state.
type Document struct {
	Users       map[string]Account `json:"users"`
	Marketplace MarketplaceState   `json:"marketplace"`
}

// ApprovedAnnouncement is a read-time projection merging approved farmer
// notices and approved tractor listings into one feed. It is never stored.
type ApprovedAnnouncement struct {
	ID         string `json:"id"`
	Source     string `json:"source"` // farmer_notice | owner_listing
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Location   string `json:"location"`
	Image      string `json:"image"`
	AuthorName string `json:"authorName"`
	CreatedAt  string `json:"createdAt"`
}

// Stats summarizes the ledger for the admin dashboard.
type Stats struct {
	UsersApprox          int `json:"usersApprox"`
	ListingsTotal        int `json:"listingsTotal"`
	ListingsPending      int `json:"listingsPending"`
	RequestsTotal        int `json:"requestsTotal"`
	FarmerNoticesPending int `json:"farmerNoticesPending"`
}

// Timestamp renders t the way the browser client did (ISO-8601, millisecond
// precision, UTC) so documents stay byte-compatible across writers.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// ParseTimestamp is the inverse of Timestamp; records with unparsable
// timestamps sort as the zero time.
func ParseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

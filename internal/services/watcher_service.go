package services

import (
	"context"
	"time"

	applog "github.com/Uchiwa75567/TerraLinkk/internal/log"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	"github.com/Uchiwa75567/TerraLinkk/internal/repos"
)

// DefaultWatchInterval matches the 5s dashboard poll of the browser client.
const DefaultWatchInterval = 5 * time.Second

// NoticeWatcher surfaces "your notice was approved" events by diffing the
// ledger against a persisted per-farmer seen set on each check. Multiple
// approvals between checks are each reported once; approvals already seen
// never repeat.
type NoticeWatcher struct {
	Market *MarketplaceService
	Seen   *repos.SeenRepo
}

func NewNoticeWatcher(market *MarketplaceService, seen *repos.SeenRepo) *NoticeWatcher {
	return &NoticeWatcher{Market: market, Seen: seen}
}

// Check returns the farmer's notices approved since the last check and
// marks them seen. The very first check for a farmer primes the seen set
// with the current approvals silently, so pre-existing state is not
// re-announced.
func (w *NoticeWatcher) Check(farmerID string) ([]domain.FarmerNotice, error) {
	notices, err := w.Market.FarmerNotices(farmerID)
	if err != nil {
		return nil, err
	}
	approved := []domain.FarmerNotice{}
	approvedIDs := []string{}
	for _, n := range notices {
		if n.Status == domain.StatusApproved {
			approved = append(approved, n)
			approvedIDs = append(approvedIDs, n.ID)
		}
	}

	seen, initialized, err := w.Seen.Seen(farmerID)
	if err != nil {
		return nil, err
	}
	if !initialized {
		return nil, w.Seen.MarkSeen(farmerID, approvedIDs)
	}

	fresh := []domain.FarmerNotice{}
	freshIDs := []string{}
	for _, n := range approved {
		if !seen[n.ID] {
			fresh = append(fresh, n)
			freshIDs = append(freshIDs, n.ID)
		}
	}
	if len(freshIDs) == 0 {
		return nil, nil
	}
	return fresh, w.Seen.MarkSeen(farmerID, freshIDs)
}

// Watch re-checks on a fixed interval until ctx ends, invoking notify for
// every newly approved notice.
func (w *NoticeWatcher) Watch(ctx context.Context, farmerID string, every time.Duration, notify func(domain.FarmerNotice)) {
	if every <= 0 {
		every = DefaultWatchInterval
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fresh, err := w.Check(farmerID)
			if err != nil {
				applog.Error(nil, "watch.notices.fail", err, map[string]any{"farmer_id": farmerID})
				continue
			}
			for _, n := range fresh {
				notify(n)
			}
		}
	}
}

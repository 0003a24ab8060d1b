package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	applog "github.com/Uchiwa75567/TerraLinkk/internal/log"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	"github.com/Uchiwa75567/TerraLinkk/internal/repos"
)

// ErrRemoteSync marks a failed mirror call. It never leaves this package
// through Enqueue/PullOnStartup; local storage stays the source of truth.
var ErrRemoteSync = errors.New("remote sync failed")

// SyncService mirrors the Document to a remote endpoint, best effort.
// Pushes are full-document PUTs drained by a single worker so snapshots
// can never land out of order, no matter how fast mutations arrive.
type SyncService struct {
	baseURL string
	client  *http.Client
	store   repos.Store

	mu     sync.Mutex
	jobs   chan []byte
	closed bool
	done   chan struct{}
}

// NewSyncService starts the push worker. Returns nil when baseURL is empty:
// sync disabled, the store stays purely local.
func NewSyncService(baseURL string, store repos.Store) *SyncService {
	if baseURL == "" {
		return nil
	}
	s := &SyncService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		store:   store,
		jobs:    make(chan []byte, 256),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *SyncService) run() {
	defer close(s.done)
	for body := range s.jobs {
		if err := s.push(body); err != nil {
			applog.Error(nil, "sync.push.fail", err, nil)
		}
	}
}

// Enqueue snapshots the document and appends it to the push queue. If the
// queue is somehow full the oldest unsent snapshot is dropped; every later
// snapshot carries the full document anyway.
func (s *SyncService) Enqueue(doc domain.Document) {
	body, err := json.Marshal(doc)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.jobs <- body:
			return
		default:
			select {
			case <-s.jobs:
			default:
			}
		}
	}
}

// Close stops accepting pushes and waits for in-flight ones to finish.
func (s *SyncService) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()
	<-s.done
}

// PullOnStartup fetches the remote document once. A valid payload replaces
// local state (invariants re-applied, nothing echoed back to the queue).
// Any failure instead pushes the current local document once, self-healing
// an empty remote. All errors are swallowed; the app must work offline.
func (s *SyncService) PullOnStartup(ctx context.Context) {
	if doc, err := s.fetch(ctx); err == nil {
		if err := s.store.Replace(doc); err != nil {
			applog.Error(nil, "sync.pull.replace.fail", err, nil)
		} else {
			applog.Info(nil, "sync.pull.ok", nil)
		}
		return
	}

	local, err := s.store.Load()
	if err != nil {
		applog.Error(nil, "sync.pull.local.fail", err, nil)
		return
	}
	body, err := json.Marshal(local)
	if err != nil {
		return
	}
	if err := s.push(body); err != nil {
		applog.Error(nil, "sync.seed.push.fail", err, nil)
	}
}

func (s *SyncService) fetch(ctx context.Context) (domain.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/db", nil)
	if err != nil {
		return domain.Document{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", ErrRemoteSync, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Document{}, fmt.Errorf("%w: status %d", ErrRemoteSync, resp.StatusCode)
	}
	var doc domain.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", ErrRemoteSync, err)
	}
	if doc.Users == nil || doc.Marketplace.Listings == nil || doc.Marketplace.Requests == nil {
		return domain.Document{}, fmt.Errorf("%w: invalid document shape", ErrRemoteSync)
	}
	return doc, nil
}

func (s *SyncService) push(body []byte) error {
	req, err := http.NewRequest(http.MethodPut, s.baseURL+"/api/db", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteSync, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrRemoteSync, resp.StatusCode)
	}
	return nil
}

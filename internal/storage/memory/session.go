package memory

import (
	"context"
	"fmt"

	"jobcompass/internal/storage"
)

// session stages listing and delivery writes until Commit. The session itself
// satisfies both per-session store contracts, so reads observe staged writes
// the way a transaction observes its own inserts.
type session struct {
	store *Store
	done  bool

	stagedListings  map[string]*storage.Listing
	stagedDelivered map[int64]map[int64]storage.Status
}

var _ storage.Session = (*session)(nil)

func (s *session) Listings() storage.ListingStore { return s }
func (s *session) Ledger() storage.DeliveryLedger { return s }

func (s *session) Commit(context.Context) error {
	if s.done {
		return fmt.Errorf("session already closed")
	}
	s.done = true

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for sourceID, l := range s.stagedListings {
		if _, ok := s.store.listings[sourceID]; !ok {
			s.store.listings[sourceID] = l
		}
	}
	for recipientID, staged := range s.stagedDelivered {
		committed := s.store.delivered[recipientID]
		if committed == nil {
			committed = make(map[int64]storage.Status)
			s.store.delivered[recipientID] = committed
		}
		for listingID, status := range staged {
			committed[listingID] = status
		}
	}

	return nil
}

// Rollback discards staged writes. After Commit it is a no-op.
func (s *session) Rollback(context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	s.stagedListings = nil
	s.stagedDelivered = nil

	return nil
}

func (s *session) GetBySourceIDs(_ context.Context, sourceIDs []string) (map[string]*storage.Listing, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	result := make(map[string]*storage.Listing, len(sourceIDs))
	for _, id := range sourceIDs {
		if l, ok := s.lookupLocked(id); ok {
			result[id] = l
		}
	}

	return result, nil
}

func (s *session) GetOrCreate(_ context.Context, l *storage.Listing) (*storage.Listing, bool, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if existing, ok := s.lookupLocked(l.SourceID); ok {
		return existing, false, nil
	}

	s.store.nextListingID++
	l.ID = s.store.nextListingID
	copied := *l
	s.stagedListings[l.SourceID] = &copied

	return l, true, nil
}

func (s *session) GetBySourceID(_ context.Context, sourceID string) (*storage.Listing, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if l, ok := s.lookupLocked(sourceID); ok {
		return l, nil
	}

	return nil, storage.ErrNotFound
}

func (s *session) lookupLocked(sourceID string) (*storage.Listing, bool) {
	if l, ok := s.stagedListings[sourceID]; ok {
		copied := *l
		return &copied, true
	}
	if l, ok := s.store.listings[sourceID]; ok {
		copied := *l
		return &copied, true
	}

	return nil, false
}

func (s *session) Delivered(_ context.Context, recipientID int64, listingIDs []int64) (map[int64]bool, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	result := make(map[int64]bool, len(listingIDs))
	for _, id := range listingIDs {
		if _, ok := s.statusLocked(recipientID, id); ok {
			result[id] = true
		}
	}

	return result, nil
}

func (s *session) HasBeenDelivered(_ context.Context, recipientID, listingID int64) (bool, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	_, ok := s.statusLocked(recipientID, listingID)
	return ok, nil
}

func (s *session) RecordDelivered(_ context.Context, recipientID int64, listingIDs []int64) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, id := range listingIDs {
		if _, ok := s.statusLocked(recipientID, id); ok {
			return fmt.Errorf("delivery row already exists for recipient %d listing %d", recipientID, id)
		}
	}

	staged := s.stagedDelivered[recipientID]
	if staged == nil {
		staged = make(map[int64]storage.Status)
		s.stagedDelivered[recipientID] = staged
	}
	for _, id := range listingIDs {
		staged[id] = storage.StatusSent
	}

	return nil
}

func (s *session) UpdateStatus(_ context.Context, recipientID, listingID int64, status storage.Status) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	current, ok := s.statusLocked(recipientID, listingID)
	if ok {
		if current == status {
			return nil
		}
		if !storage.CanTransition(current, status) {
			return fmt.Errorf("%w: %s -> %s", storage.ErrInvalidTransition, current, status)
		}
	}

	staged := s.stagedDelivered[recipientID]
	if staged == nil {
		staged = make(map[int64]storage.Status)
		s.stagedDelivered[recipientID] = staged
	}
	staged[listingID] = status

	return nil
}

func (s *session) statusLocked(recipientID, listingID int64) (storage.Status, bool) {
	if st, ok := s.stagedDelivered[recipientID][listingID]; ok {
		return st, true
	}
	st, ok := s.store.delivered[recipientID][listingID]

	return st, ok
}

// Package memory is an in-memory implementation of the storage contracts.
// Sessions stage their writes and apply them on Commit, mirroring the
// transactional behavior of the postgres implementation closely enough to
// exercise the reconciliation and dispatch logic in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"jobcompass/internal/storage"
)

type Store struct {
	mu sync.Mutex

	nextListingID   int64
	nextRecipientID int64
	nextDocumentID  int64

	listings   map[string]*storage.Listing          // by source id
	delivered  map[int64]map[int64]storage.Status   // recipient -> listing -> status
	recipients map[int64]*storage.RecipientWithCriteria
	documents  []*storage.Document
}

var (
	_ storage.Factory        = (*Store)(nil)
	_ storage.RecipientStore = (*Store)(nil)
	_ storage.DocumentStore  = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		listings:   make(map[string]*storage.Listing),
		delivered:  make(map[int64]map[int64]storage.Status),
		recipients: make(map[int64]*storage.RecipientWithCriteria),
	}
}

func (s *Store) Begin(context.Context) (storage.Session, error) {
	return &session{
		store:           s,
		stagedListings:  make(map[string]*storage.Listing),
		stagedDelivered: make(map[int64]map[int64]storage.Status),
	}, nil
}

// AddRecipient registers a recipient with criteria, assigning ids.
func (s *Store) AddRecipient(rc storage.RecipientWithCriteria) storage.RecipientWithCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRecipientID++
	rc.Recipient.ID = s.nextRecipientID
	rc.Recipient.CreatedAt = time.Now().UTC()
	rc.Criteria.ID = s.nextRecipientID
	rc.Criteria.RecipientID = rc.Recipient.ID
	s.recipients[rc.Recipient.ID] = &rc

	return rc
}

// ListingCount reports how many listings have been committed.
func (s *Store) ListingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listings)
}

// DeliveredStatus reports the committed delivery status for a pair.
func (s *Store) DeliveredStatus(recipientID, listingID int64) (storage.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.delivered[recipientID][listingID]
	return st, ok
}

// DeliveredCount reports how many committed delivery rows a recipient has.
func (s *Store) DeliveredCount(recipientID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered[recipientID])
}

func (s *Store) ListWithCriteria(context.Context) ([]storage.RecipientWithCriteria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]storage.RecipientWithCriteria, 0, len(s.recipients))
	for _, rc := range s.recipients {
		result = append(result, *rc)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Recipient.ID < result[j].Recipient.ID
	})

	return result, nil
}

func (s *Store) GetByChatID(_ context.Context, chatID string) (*storage.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rc := range s.recipients {
		if rc.Recipient.ChatID == chatID {
			r := rc.Recipient
			return &r, nil
		}
	}

	return nil, storage.ErrNotFound
}

func (s *Store) CriteriaFor(_ context.Context, recipientID int64) (*storage.SearchCriteria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rc, ok := s.recipients[recipientID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := rc.Criteria

	return &c, nil
}

func (s *Store) SaveProfile(_ context.Context, r *storage.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rc := range s.recipients {
		if rc.Recipient.ChatID == r.ChatID {
			r.ID = rc.Recipient.ID
			r.CreatedAt = rc.Recipient.CreatedAt
			rc.Recipient = *r
			return nil
		}
	}

	s.nextRecipientID++
	r.ID = s.nextRecipientID
	r.CreatedAt = time.Now().UTC()
	s.recipients[r.ID] = &storage.RecipientWithCriteria{Recipient: *r}

	return nil
}

func (s *Store) SaveCriteria(_ context.Context, c *storage.SearchCriteria) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rc, ok := s.recipients[c.RecipientID]
	if !ok {
		return storage.ErrNotFound
	}
	if c.ID == 0 {
		c.ID = c.RecipientID
	}
	rc.Criteria = *c

	return nil
}

func (s *Store) SaveDocument(_ context.Context, d *storage.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextDocumentID++
	d.ID = s.nextDocumentID
	d.CreatedAt = time.Now().UTC()
	copied := *d
	s.documents = append(s.documents, &copied)

	return nil
}

// Documents returns all saved documents.
func (s *Store) Documents() []*storage.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*storage.Document(nil), s.documents...)
}

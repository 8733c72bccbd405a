package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when a status change is not allowed
	// from the current state.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ListingStore is the listing side of a session.
type ListingStore interface {
	// GetBySourceIDs returns the stored listings for the given source ids,
	// keyed by source id. Unknown ids are simply absent from the result.
	GetBySourceIDs(ctx context.Context, sourceIDs []string) (map[string]*Listing, error)
	// GetOrCreate stores the listing unless one with the same source id
	// already exists, in which case the stored one is returned unchanged.
	// The boolean reports whether a new row was created.
	GetOrCreate(ctx context.Context, l *Listing) (*Listing, bool, error)
	GetBySourceID(ctx context.Context, sourceID string) (*Listing, error)
}

// DeliveryLedger tracks which listings each recipient has received and what
// they did with them.
type DeliveryLedger interface {
	// Delivered reports, for one recipient, which of the given listing ids
	// already have a ledger row.
	Delivered(ctx context.Context, recipientID int64, listingIDs []int64) (map[int64]bool, error)
	HasBeenDelivered(ctx context.Context, recipientID, listingID int64) (bool, error)
	// RecordDelivered inserts SENT rows for all given listings.
	RecordDelivered(ctx context.Context, recipientID int64, listingIDs []int64) error
	// UpdateStatus moves one ledger row to a new status, enforcing the
	// transition rules. Setting the current status again is a no-op.
	UpdateStatus(ctx context.Context, recipientID, listingID int64, status Status) error
}

// Session groups listing and ledger writes into one atomic unit. Rollback
// after Commit is a no-op, so it can be deferred unconditionally.
type Session interface {
	Listings() ListingStore
	Ledger() DeliveryLedger
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory opens sessions. Each digest recipient gets their own, so one
// failure never poisons another recipient's writes.
type Factory interface {
	Begin(ctx context.Context) (Session, error)
}

// RecipientStore manages recipient profiles and their saved searches.
type RecipientStore interface {
	ListWithCriteria(ctx context.Context) ([]RecipientWithCriteria, error)
	GetByChatID(ctx context.Context, chatID string) (*Recipient, error)
	CriteriaFor(ctx context.Context, recipientID int64) (*SearchCriteria, error)
	SaveProfile(ctx context.Context, r *Recipient) error
	SaveCriteria(ctx context.Context, c *SearchCriteria) error
}

// DocumentStore persists generated application documents.
type DocumentStore interface {
	SaveDocument(ctx context.Context, d *Document) error
}

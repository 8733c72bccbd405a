package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"jobcompass/internal/storage"
)

type session struct {
	tx       pgx.Tx
	listings *listingStore
	ledger   *deliveryLedger
}

var _ storage.Session = (*session)(nil)

func (s *session) Listings() storage.ListingStore { return s.listings }

func (s *session) Ledger() storage.DeliveryLedger { return s.ledger }

func (s *session) Commit(ctx context.Context) error {
	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Rollback discards pending writes. After a Commit it is a no-op, so callers
// can defer it unconditionally.
func (s *session) Rollback(ctx context.Context) error {
	err := s.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback session: %w", err)
	}
	return nil
}

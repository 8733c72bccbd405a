// Package search drives the interactive vacancy search: fetch, reconcile and
// hand back a page of fresh listings, committed as delivered up front.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"jobcompass/internal/digest"
	"jobcompass/internal/reconcile"
	"jobcompass/internal/storage"
)

// DefaultPageSize is the interactive page size. It is deliberately smaller
// than the digest limit: an interactive user can always ask again.
const DefaultPageSize = 5

type Flow struct {
	sessions   storage.Factory
	fetcher    digest.Fetcher
	reconciler *reconcile.Reconciler
	pageSize   int
	logger     *zap.Logger
}

func NewFlow(
	sessions storage.Factory,
	fetcher digest.Fetcher,
	reconciler *reconcile.Reconciler,
	pageSize int,
	logger *zap.Logger,
) *Flow {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Flow{
		sessions:   sessions,
		fetcher:    fetcher,
		reconciler: reconciler,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// Run fetches and reconciles vacancies for the recipient's saved search and
// returns one page of listings they have never seen. The page is recorded as
// delivered and committed before it is returned: once the caller shows it,
// the ledger already reflects that.
func (f *Flow) Run(ctx context.Context, recipientID int64, criteria *storage.SearchCriteria) ([]reconcile.Match, error) {
	batch, err := f.fetcher.Fetch(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("fetch vacancies: %w", err)
	}
	if len(batch) == 0 {
		return nil, nil
	}

	sess, err := f.sessions.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	defer sess.Rollback(ctx)

	matches, err := f.reconciler.Run(ctx, sess, recipientID, batch)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	// Only the shown page is marked delivered. The rest of the batch stays
	// fresh for the next digest or search.
	page := matches
	if len(page) > f.pageSize {
		page = page[:f.pageSize]
	}

	listingIDs := make([]int64, len(page))
	for i, m := range page {
		listingIDs[i] = m.Listing.ID
	}
	if err := sess.Ledger().RecordDelivered(ctx, recipientID, listingIDs); err != nil {
		return nil, fmt.Errorf("record delivered: %w", err)
	}

	if err := sess.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit session: %w", err)
	}

	f.logger.Info("search page delivered",
		zap.Int64("recipient_id", recipientID),
		zap.Int("shown", len(page)),
		zap.Int("reconciled", len(matches)),
	)

	return page, nil
}

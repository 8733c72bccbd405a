// Package reconcile turns raw vacancy batches into the set of stored listings
// a recipient has never seen.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"jobcompass/internal/headhunter"
	"jobcompass/internal/listing"
	"jobcompass/internal/storage"
)

// Match pairs a stored listing with the raw payload it came from, so callers
// can reach source fields the normalized form drops.
type Match struct {
	Listing *storage.Listing
	Raw     *headhunter.Vacancy
}

type Reconciler struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// Run reconciles a fetched batch against storage for one recipient and
// returns, in input order, the listings that have never been delivered to
// them. Payloads without a source id are skipped with a warning; duplicates
// within the batch keep their first occurrence only.
func (r *Reconciler) Run(ctx context.Context, sess storage.Session, recipientID int64, batch []*headhunter.Vacancy) ([]Match, error) {
	seen := make(map[string]bool, len(batch))
	candidates := make([]*headhunter.Vacancy, 0, len(batch))
	for _, raw := range batch {
		if raw.ID != "" && seen[raw.ID] {
			continue
		}
		if raw.ID != "" {
			seen[raw.ID] = true
		}
		candidates = append(candidates, raw)
	}

	normalized := make([]Match, 0, len(candidates))
	sourceIDs := make([]string, 0, len(candidates))
	for _, raw := range candidates {
		l, err := listing.Normalize(raw)
		if err != nil {
			if errors.Is(err, listing.ErrMissingSourceID) {
				r.logger.Warn("skipping vacancy without source id",
					zap.String("name", raw.Name),
				)
				continue
			}
			return nil, fmt.Errorf("normalize vacancy %s: %w", raw.ID, err)
		}
		normalized = append(normalized, Match{Listing: l, Raw: raw})
		sourceIDs = append(sourceIDs, l.SourceID)
	}

	if len(normalized) == 0 {
		return nil, nil
	}

	known, err := sess.Listings().GetBySourceIDs(ctx, sourceIDs)
	if err != nil {
		return nil, fmt.Errorf("look up listings: %w", err)
	}

	listingIDs := make([]int64, 0, len(normalized))
	for i := range normalized {
		m := &normalized[i]
		if existing, ok := known[m.Listing.SourceID]; ok {
			m.Listing = existing
		} else {
			stored, created, err := sess.Listings().GetOrCreate(ctx, m.Listing)
			if err != nil {
				return nil, fmt.Errorf("store listing %s: %w", m.Listing.SourceID, err)
			}
			m.Listing = stored
			if created {
				r.logger.Debug("stored new listing",
					zap.String("source_id", stored.SourceID),
					zap.String("title", stored.Title),
				)
			}
		}
		listingIDs = append(listingIDs, m.Listing.ID)
	}

	delivered, err := sess.Ledger().Delivered(ctx, recipientID, listingIDs)
	if err != nil {
		return nil, fmt.Errorf("look up delivered listings: %w", err)
	}

	fresh := make([]Match, 0, len(normalized))
	for _, m := range normalized {
		if !delivered[m.Listing.ID] {
			fresh = append(fresh, m)
		}
	}

	return fresh, nil
}

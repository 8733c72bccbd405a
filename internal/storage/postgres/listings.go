package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"jobcompass/internal/storage"
)

const listingColumns = `id, source_id, title, employer, city, compensation, url, apply_url, snippet, published_at`

type listingStore struct {
	db querier
}

var _ storage.ListingStore = (*listingStore)(nil)

func (s *listingStore) GetBySourceIDs(ctx context.Context, sourceIDs []string) (map[string]*storage.Listing, error) {
	result := make(map[string]*storage.Listing, len(sourceIDs))
	if len(sourceIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE source_id = ANY($1)`,
		sourceIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query listings by source ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		result[l.SourceID] = l
	}

	return result, rows.Err()
}

func (s *listingStore) GetOrCreate(ctx context.Context, l *storage.Listing) (*storage.Listing, bool, error) {
	// First write wins: on a source_id conflict the insert is a no-op and the
	// stored row is returned instead of the candidate.
	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO listings (source_id, title, employer, city, compensation, url, apply_url, snippet, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (source_id) DO NOTHING
		 RETURNING id`,
		l.SourceID, l.Title, l.Employer, l.City, l.Compensation, l.URL, l.ApplyURL, l.Snippet, l.PublishedAt,
	).Scan(&id)

	switch {
	case err == nil:
		l.ID = id
		return l, true, nil
	case errors.Is(err, pgx.ErrNoRows):
		existing, err := s.GetBySourceID(ctx, l.SourceID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	default:
		return nil, false, fmt.Errorf("insert listing %s: %w", l.SourceID, err)
	}
}

func (s *listingStore) GetBySourceID(ctx context.Context, sourceID string) (*storage.Listing, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE source_id = $1`,
		sourceID,
	)

	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return l, nil
}

func scanListing(row pgx.Row) (*storage.Listing, error) {
	var l storage.Listing
	err := row.Scan(
		&l.ID, &l.SourceID, &l.Title, &l.Employer, &l.City,
		&l.Compensation, &l.URL, &l.ApplyURL, &l.Snippet, &l.PublishedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan listing: %w", err)
	}
	return &l, nil
}

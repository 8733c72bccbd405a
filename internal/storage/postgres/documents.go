package postgres

import (
	"context"
	"fmt"

	"jobcompass/internal/storage"
)

func (s *Store) SaveDocument(ctx context.Context, d *storage.Document) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO generated_documents (recipient_id, listing_id, doc_type, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		d.RecipientID, d.ListingID, string(d.Kind), d.Content,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("save generated document: %w", err)
	}

	return nil
}

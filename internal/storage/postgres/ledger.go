package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"jobcompass/internal/storage"
)

type deliveryLedger struct {
	db querier
}

var _ storage.DeliveryLedger = (*deliveryLedger)(nil)

func (l *deliveryLedger) Delivered(ctx context.Context, recipientID int64, listingIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(listingIDs))
	if len(listingIDs) == 0 {
		return result, nil
	}

	rows, err := l.db.Query(ctx,
		`SELECT listing_id FROM delivery_status WHERE recipient_id = $1 AND listing_id = ANY($2)`,
		recipientID, listingIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query delivered listings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan delivered listing id: %w", err)
		}
		result[id] = true
	}

	return result, rows.Err()
}

func (l *deliveryLedger) HasBeenDelivered(ctx context.Context, recipientID, listingID int64) (bool, error) {
	var exists bool
	err := l.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM delivery_status WHERE recipient_id = $1 AND listing_id = $2)`,
		recipientID, listingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query delivery row: %w", err)
	}

	return exists, nil
}

func (l *deliveryLedger) RecordDelivered(ctx context.Context, recipientID int64, listingIDs []int64) error {
	if len(listingIDs) == 0 {
		return nil
	}

	_, err := l.db.Exec(ctx,
		`INSERT INTO delivery_status (recipient_id, listing_id, status)
		 SELECT $1, unnest($2::bigint[]), $3`,
		recipientID, listingIDs, string(storage.StatusSent),
	)
	if err != nil {
		return fmt.Errorf("record delivered listings: %w", err)
	}

	return nil
}

func (l *deliveryLedger) UpdateStatus(ctx context.Context, recipientID, listingID int64, status storage.Status) error {
	var current string
	err := l.db.QueryRow(ctx,
		`SELECT status FROM delivery_status WHERE recipient_id = $1 AND listing_id = $2`,
		recipientID, listingID,
	).Scan(&current)

	if errors.Is(err, pgx.ErrNoRows) {
		_, err := l.db.Exec(ctx,
			`INSERT INTO delivery_status (recipient_id, listing_id, status) VALUES ($1, $2, $3)`,
			recipientID, listingID, string(status),
		)
		if err != nil {
			return fmt.Errorf("insert delivery status: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("query delivery status: %w", err)
	}

	from, err := storage.ParseStatus(current)
	if err != nil {
		return err
	}

	if from == status {
		return nil
	}
	if !storage.CanTransition(from, status) {
		return fmt.Errorf("%w: %s -> %s", storage.ErrInvalidTransition, from, status)
	}

	_, err = l.db.Exec(ctx,
		`UPDATE delivery_status SET status = $1 WHERE recipient_id = $2 AND listing_id = $3`,
		string(status), recipientID, listingID,
	)
	if err != nil {
		return fmt.Errorf("update delivery status: %w", err)
	}

	return nil
}

// Package digest runs the daily dispatch: fetch fresh vacancies per
// recipient, reconcile them against storage and send what is new.
package digest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"jobcompass/internal/headhunter"
	"jobcompass/internal/reconcile"
	"jobcompass/internal/storage"
)

// DefaultLimit caps how many listings one digest message shows. Listings
// beyond the cap are still recorded as delivered so they never resurface.
const DefaultLimit = 10

// Fetcher retrieves the raw vacancy batch for one saved search.
type Fetcher interface {
	Fetch(ctx context.Context, c *storage.SearchCriteria) ([]*headhunter.Vacancy, error)
}

// Notifier sends one text message to a chat.
type Notifier interface {
	Send(ctx context.Context, chatID, text string) error
}

type Dispatcher struct {
	recipients storage.RecipientStore
	sessions   storage.Factory
	fetcher    Fetcher
	notifier   Notifier
	reconciler *reconcile.Reconciler
	limit      int
	logger     *zap.Logger
}

func NewDispatcher(
	recipients storage.RecipientStore,
	sessions storage.Factory,
	fetcher Fetcher,
	notifier Notifier,
	reconciler *reconcile.Reconciler,
	limit int,
	logger *zap.Logger,
) *Dispatcher {
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &Dispatcher{
		recipients: recipients,
		sessions:   sessions,
		fetcher:    fetcher,
		notifier:   notifier,
		reconciler: reconciler,
		limit:      limit,
		logger:     logger,
	}
}

// Run dispatches the digest to every recipient with saved criteria. Each
// recipient runs in their own session: one failing recipient is logged and
// skipped, never aborting the rest of the run.
func (d *Dispatcher) Run(ctx context.Context) error {
	recipients, err := d.recipients.ListWithCriteria(ctx)
	if err != nil {
		return fmt.Errorf("list digest recipients: %w", err)
	}

	d.logger.Info("starting digest run", zap.Int("recipients", len(recipients)))

	for _, rc := range recipients {
		if err := d.dispatchOne(ctx, &rc); err != nil {
			d.logger.Error("digest dispatch failed for recipient",
				zap.Int64("recipient_id", rc.Recipient.ID),
				zap.String("chat_id", rc.Recipient.ChatID),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, rc *storage.RecipientWithCriteria) error {
	batch, err := d.fetcher.Fetch(ctx, &rc.Criteria)
	if err != nil {
		return fmt.Errorf("fetch vacancies: %w", err)
	}
	if len(batch) == 0 {
		d.logger.Debug("no vacancies fetched", zap.Int64("recipient_id", rc.Recipient.ID))
		return nil
	}

	sess, err := d.sessions.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer sess.Rollback(ctx)

	matches, err := d.reconciler.Run(ctx, sess, rc.Recipient.ID, batch)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		d.logger.Debug("nothing new to deliver", zap.Int64("recipient_id", rc.Recipient.ID))
		return nil
	}

	shown := matches
	if len(shown) > d.limit {
		shown = shown[:d.limit]
	}

	text := Format(shown, len(matches))

	// The message goes out before anything is committed. If the send fails
	// the session rolls back and the listings stay undelivered, so a retry
	// picks them up again. The reverse order could mark listings delivered
	// that the recipient never saw.
	if err := d.notifier.Send(ctx, rc.Recipient.ChatID, text); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	listingIDs := make([]int64, len(matches))
	for i, m := range matches {
		listingIDs[i] = m.Listing.ID
	}
	if err := sess.Ledger().RecordDelivered(ctx, rc.Recipient.ID, listingIDs); err != nil {
		return fmt.Errorf("record delivered: %w", err)
	}

	if err := sess.Commit(ctx); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}

	d.logger.Info("digest delivered",
		zap.Int64("recipient_id", rc.Recipient.ID),
		zap.Int("shown", len(shown)),
		zap.Int("reconciled", len(matches)),
	)

	return nil
}

package digest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobcompass/internal/headhunter"
	"jobcompass/internal/reconcile"
	"jobcompass/internal/storage"
	"jobcompass/internal/storage/memory"
)

type stubFetcher struct {
	batches map[int64][]*headhunter.Vacancy
	err     error
}

func (f *stubFetcher) Fetch(_ context.Context, c *storage.SearchCriteria) ([]*headhunter.Vacancy, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.batches[c.RecipientID], nil
}

type stubNotifier struct {
	sent    []sentMessage
	failFor map[string]bool
}

type sentMessage struct {
	chatID string
	text   string
}

func (n *stubNotifier) Send(_ context.Context, chatID, text string) error {
	if n.failFor[chatID] {
		return errors.New("telegram is down")
	}
	n.sent = append(n.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func vacancy(id, name string) *headhunter.Vacancy {
	return &headhunter.Vacancy{
		ID:           id,
		Name:         name,
		AlternateURL: "https://hh.ru/vacancy/" + id,
	}
}

func addRecipient(store *memory.Store, chatID string) storage.RecipientWithCriteria {
	return store.AddRecipient(storage.RecipientWithCriteria{
		Recipient: storage.Recipient{ChatID: chatID, FullName: "Test User"},
		Criteria:  storage.SearchCriteria{Position: "Go Developer"},
	})
}

func newDispatcher(store *memory.Store, fetcher Fetcher, notifier Notifier, limit int) *Dispatcher {
	return NewDispatcher(store, store, fetcher, notifier, reconcile.New(zap.NewNop()), limit, zap.NewNop())
}

func TestRunDeliversAndRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rc := addRecipient(store, "chat-1")

	fetcher := &stubFetcher{batches: map[int64][]*headhunter.Vacancy{
		rc.Criteria.RecipientID: {vacancy("10", "Go Developer"), vacancy("20", "Backend Engineer")},
	}}
	notifier := &stubNotifier{}

	d := newDispatcher(store, fetcher, notifier, DefaultLimit)
	require.NoError(t, d.Run(ctx))

	require.Len(t, notifier.sent, 1)
	require.Equal(t, "chat-1", notifier.sent[0].chatID)
	require.Contains(t, notifier.sent[0].text, "Go Developer")
	require.Contains(t, notifier.sent[0].text, "Backend Engineer")

	require.Equal(t, 2, store.DeliveredCount(rc.Recipient.ID))
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rc := addRecipient(store, "chat-1")

	fetcher := &stubFetcher{batches: map[int64][]*headhunter.Vacancy{
		rc.Criteria.RecipientID: {vacancy("10", "Go Developer")},
	}}
	notifier := &stubNotifier{}

	d := newDispatcher(store, fetcher, notifier, DefaultLimit)
	require.NoError(t, d.Run(ctx))
	require.NoError(t, d.Run(ctx))

	// The second run reconciles the same batch to nothing: no new message.
	require.Len(t, notifier.sent, 1)
	require.Equal(t, 1, store.DeliveredCount(rc.Recipient.ID))
}

func TestRunSendFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rc := addRecipient(store, "chat-1")

	fetcher := &stubFetcher{batches: map[int64][]*headhunter.Vacancy{
		rc.Criteria.RecipientID: {vacancy("10", "Go Developer")},
	}}
	notifier := &stubNotifier{failFor: map[string]bool{"chat-1": true}}

	d := newDispatcher(store, fetcher, notifier, DefaultLimit)
	require.NoError(t, d.Run(ctx))

	// Nothing was committed, so a later run can deliver the same listings.
	require.Equal(t, 0, store.DeliveredCount(rc.Recipient.ID))

	notifier.failFor = nil
	require.NoError(t, d.Run(ctx))
	require.Len(t, notifier.sent, 1)
	require.Equal(t, 1, store.DeliveredCount(rc.Recipient.ID))
}

func TestRunOneRecipientFailureDoesNotAffectOthers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	first := addRecipient(store, "chat-1")
	second := addRecipient(store, "chat-2")

	fetcher := &stubFetcher{batches: map[int64][]*headhunter.Vacancy{
		first.Criteria.RecipientID:  {vacancy("10", "Go Developer")},
		second.Criteria.RecipientID: {vacancy("10", "Go Developer")},
	}}
	notifier := &stubNotifier{failFor: map[string]bool{"chat-1": true}}

	d := newDispatcher(store, fetcher, notifier, DefaultLimit)
	require.NoError(t, d.Run(ctx))

	require.Len(t, notifier.sent, 1)
	require.Equal(t, "chat-2", notifier.sent[0].chatID)
	require.Equal(t, 0, store.DeliveredCount(first.Recipient.ID))
	require.Equal(t, 1, store.DeliveredCount(second.Recipient.ID))
}

// flakySessions wraps a real factory and injects a ledger write failure for
// one recipient.
type flakySessions struct {
	inner   storage.Factory
	failFor int64
}

func (f *flakySessions) Begin(ctx context.Context) (storage.Session, error) {
	sess, err := f.inner.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &flakySession{Session: sess, failFor: f.failFor}, nil
}

type flakySession struct {
	storage.Session
	failFor int64
}

func (s *flakySession) Ledger() storage.DeliveryLedger {
	return &flakyLedger{DeliveryLedger: s.Session.Ledger(), failFor: s.failFor}
}

type flakyLedger struct {
	storage.DeliveryLedger
	failFor int64
}

func (l *flakyLedger) RecordDelivered(ctx context.Context, recipientID int64, listingIDs []int64) error {
	if recipientID == l.failFor {
		return errors.New("connection reset by peer")
	}
	return l.DeliveryLedger.RecordDelivered(ctx, recipientID, listingIDs)
}

func TestRunPersistenceFailureDoesNotAffectOthers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	first := addRecipient(store, "chat-1")
	second := addRecipient(store, "chat-2")

	fetcher := &stubFetcher{batches: map[int64][]*headhunter.Vacancy{
		first.Criteria.RecipientID:  {vacancy("10", "Go Developer")},
		second.Criteria.RecipientID: {vacancy("10", "Go Developer")},
	}}
	notifier := &stubNotifier{}
	sessions := &flakySessions{inner: store, failFor: first.Recipient.ID}

	d := NewDispatcher(store, sessions, fetcher, notifier, reconcile.New(zap.NewNop()), DefaultLimit, zap.NewNop())
	require.NoError(t, d.Run(ctx))

	// The failed recipient's session rolled back; the other one committed.
	require.Equal(t, 0, store.DeliveredCount(first.Recipient.ID))
	require.Equal(t, 1, store.DeliveredCount(second.Recipient.ID))
}

func TestRunTruncatesMessageButRecordsAll(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rc := addRecipient(store, "chat-1")

	fetcher := &stubFetcher{batches: map[int64][]*headhunter.Vacancy{
		rc.Criteria.RecipientID: {
			vacancy("10", "shown one"),
			vacancy("20", "shown two"),
			vacancy("30", "beyond the cap"),
		},
	}}
	notifier := &stubNotifier{}

	d := newDispatcher(store, fetcher, notifier, 2)
	require.NoError(t, d.Run(ctx))

	require.Len(t, notifier.sent, 1)
	text := notifier.sent[0].text
	require.Contains(t, text, "shown one")
	require.Contains(t, text, "shown two")
	require.NotContains(t, text, "beyond the cap")
	require.Contains(t, text, "1 more")

	// Everything reconciled is recorded, shown or not.
	require.Equal(t, 3, store.DeliveredCount(rc.Recipient.ID))
}

func TestRunFetchFailureSkipsRecipient(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rc := addRecipient(store, "chat-1")

	fetcher := &stubFetcher{err: errors.New("hh.ru timeout")}
	notifier := &stubNotifier{}

	d := newDispatcher(store, fetcher, notifier, DefaultLimit)
	require.NoError(t, d.Run(ctx))

	require.Empty(t, notifier.sent)
	require.Equal(t, 0, store.DeliveredCount(rc.Recipient.ID))
}

func TestFormat(t *testing.T) {
	shown := []reconcile.Match{
		{Listing: &storage.Listing{
			Title:        "Go Developer",
			Employer:     "Acme",
			City:         "Москва",
			Compensation: "from 200000 RUR",
			URL:          "https://hh.ru/vacancy/10",
			Snippet:      "Build services",
		}},
	}

	text := Format(shown, 4)

	require.True(t, strings.HasPrefix(text, "*Your job digest: 4 new vacancies*"))
	require.Contains(t, text, "[Go Developer](https://hh.ru/vacancy/10)")
	require.Contains(t, text, "Acme, Москва")
	require.Contains(t, text, "from 200000 RUR")
	require.Contains(t, text, "_Build services_")
	require.Contains(t, text, "...and 3 more saved for later.")
}

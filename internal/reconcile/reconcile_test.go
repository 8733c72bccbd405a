package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobcompass/internal/headhunter"
	"jobcompass/internal/storage"
	"jobcompass/internal/storage/memory"
)

func vacancy(id, name string) *headhunter.Vacancy {
	return &headhunter.Vacancy{
		ID:           id,
		Name:         name,
		AlternateURL: "https://hh.ru/vacancy/" + id,
	}
}

func beginSession(t *testing.T, store *memory.Store) storage.Session {
	t.Helper()
	sess, err := store.Begin(context.Background())
	require.NoError(t, err)
	return sess
}

func TestRunStoresAndReturnsFreshListings(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := New(zap.NewNop())

	sess := beginSession(t, store)
	matches, err := r.Run(ctx, sess, 1, []*headhunter.Vacancy{
		vacancy("10", "Go Developer"),
		vacancy("20", "Backend Engineer"),
	})
	require.NoError(t, err)
	require.NoError(t, sess.Commit(ctx))

	require.Len(t, matches, 2)
	require.Equal(t, "10", matches[0].Listing.SourceID)
	require.Equal(t, "20", matches[1].Listing.SourceID)
	require.NotZero(t, matches[0].Listing.ID)
	require.Equal(t, 2, store.ListingCount())
}

func TestRunSkipsAlreadyDelivered(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := New(zap.NewNop())

	sess := beginSession(t, store)
	matches, err := r.Run(ctx, sess, 1, []*headhunter.Vacancy{vacancy("10", "Go Developer")})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.NoError(t, sess.Ledger().RecordDelivered(ctx, 1, []int64{matches[0].Listing.ID}))
	require.NoError(t, sess.Commit(ctx))

	// Same batch again: nothing is fresh for this recipient.
	sess = beginSession(t, store)
	matches, err = r.Run(ctx, sess, 1, []*headhunter.Vacancy{vacancy("10", "Go Developer")})
	require.NoError(t, err)
	require.Empty(t, matches)

	// A different recipient has never seen it.
	matches, err = r.Run(ctx, sess, 2, []*headhunter.Vacancy{vacancy("10", "Go Developer")})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	// The listing itself was stored exactly once.
	require.Equal(t, 1, store.ListingCount())
}

func TestRunIsIdempotentWithoutRecording(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := New(zap.NewNop())

	batch := []*headhunter.Vacancy{
		vacancy("10", "Go Developer"),
		vacancy("20", "Backend Engineer"),
		vacancy("30", "SRE"),
	}

	sess := beginSession(t, store)
	first, err := r.Run(ctx, sess, 1, batch)
	require.NoError(t, err)
	require.NoError(t, sess.Commit(ctx))

	// Nothing was recorded as delivered, so a second pass over the same
	// batch yields the identical result.
	sess = beginSession(t, store)
	second, err := r.Run(ctx, sess, 1, batch)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		require.Equal(t, first[i].Listing.SourceID, second[i].Listing.SourceID)
		require.Equal(t, first[i].Listing.ID, second[i].Listing.ID)
	}
}

func TestRunDeduplicatesWithinBatch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := New(zap.NewNop())

	sess := beginSession(t, store)
	matches, err := r.Run(ctx, sess, 1, []*headhunter.Vacancy{
		vacancy("10", "first occurrence"),
		vacancy("20", "other"),
		vacancy("10", "second occurrence"),
	})
	require.NoError(t, err)

	require.Len(t, matches, 2)
	require.Equal(t, "first occurrence", matches[0].Listing.Title)
	require.Equal(t, "20", matches[1].Listing.SourceID)
}

func TestRunFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := New(zap.NewNop())

	sess := beginSession(t, store)
	_, err := r.Run(ctx, sess, 1, []*headhunter.Vacancy{vacancy("10", "original title")})
	require.NoError(t, err)
	require.NoError(t, sess.Commit(ctx))

	// The upstream edited the vacancy; the stored version stays authoritative.
	sess = beginSession(t, store)
	matches, err := r.Run(ctx, sess, 2, []*headhunter.Vacancy{vacancy("10", "edited title")})
	require.NoError(t, err)

	require.Len(t, matches, 1)
	require.Equal(t, "original title", matches[0].Listing.Title)
}

func TestRunSkipsPayloadsWithoutSourceID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := New(zap.NewNop())

	sess := beginSession(t, store)
	matches, err := r.Run(ctx, sess, 1, []*headhunter.Vacancy{
		{Name: "no id at all"},
		vacancy("10", "valid"),
		{Name: "another without id"},
	})
	require.NoError(t, err)

	require.Len(t, matches, 1)
	require.Equal(t, "10", matches[0].Listing.SourceID)
}

func TestRunPreservesInputOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := New(zap.NewNop())

	sess := beginSession(t, store)
	matches, err := r.Run(ctx, sess, 1, []*headhunter.Vacancy{
		vacancy("30", "third"),
		vacancy("10", "first"),
		vacancy("20", "second"),
	})
	require.NoError(t, err)

	require.Len(t, matches, 3)
	require.Equal(t, "30", matches[0].Listing.SourceID)
	require.Equal(t, "10", matches[1].Listing.SourceID)
	require.Equal(t, "20", matches[2].Listing.SourceID)
}

func TestRunEmptyBatch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := New(zap.NewNop())

	sess := beginSession(t, store)
	matches, err := r.Run(ctx, sess, 1, nil)
	require.NoError(t, err)
	require.Empty(t, matches)
}

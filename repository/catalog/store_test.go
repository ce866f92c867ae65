package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lena-biju/library-managment/model"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "books.json"))
	require.NoError(t, err)
	return s
}

func sample(title string) model.Book {
	return model.Book{
		Title:        title,
		Author:       model.Author{Name: "Robin Hobb"},
		Genre:        []string{"Fantasy"},
		Language:     "English",
		Price:        29.99,
		RentPrice:    9.99,
		Availability: true,
		Category:     []string{"ebook"},
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	in := sample("Assassin's Apprentice")
	created, err := s.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)

	got, err := s.GetByID(created.ID)
	require.NoError(t, err)

	want := in
	want.ID = created.ID
	require.Equal(t, want, *got)
}

func TestCreate_IDsAreMonotonic(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		b, err := s.Create(ctx, sample("Book"))
		require.NoError(t, err)
		require.Greater(t, b.ID, prev)
		prev = b.ID
	}

	// Deleting the latest must not cause reuse of a live id below max.
	require.NoError(t, s.Delete(ctx, 3, s.Revision()))
	b, err := s.Create(ctx, sample("Book"))
	require.NoError(t, err)
	require.Equal(t, int64(6), b.ID)
}

func TestCreate_ConcurrentIDsDistinct(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	const n = 20
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := s.Create(ctx, sample("Book"))
			require.NoError(t, err)
			ids <- b.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		require.False(t, seen[id], "id %d allocated twice", id)
		seen[id] = true
	}
	require.Len(t, seen, n)
}

func TestUpdate_StaleRevisionRejected(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sample("Original"))
	require.NoError(t, err)

	// Two writers read the same revision; only the first may win.
	rev := s.Revision()

	first := sample("Edit A")
	_, _, err = s.Update(ctx, created.ID, rev, first)
	require.NoError(t, err)

	second := sample("Edit B")
	_, _, err = s.Update(ctx, created.ID, rev, second)
	require.ErrorIs(t, err, ErrConflict)

	got, err := s.GetByID(created.ID)
	require.NoError(t, err)
	require.Equal(t, "Edit A", got.Title)
}

func TestUpdate_PreservesID(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sample("Original"))
	require.NoError(t, err)

	patch := sample("Renamed")
	patch.ID = 999 // must be ignored
	got, rev, err := s.Update(ctx, created.ID, s.Revision(), patch)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, rev, s.Revision())
}

func TestUpdate_NotFound(t *testing.T) {
	s := newStore(t)
	_, _, err := s.Update(context.Background(), 42, s.Revision(), sample("x"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sample("Doomed"))
	require.NoError(t, err)

	require.ErrorIs(t, s.Delete(ctx, created.ID, "bogus"), ErrConflict)
	require.NoError(t, s.Delete(ctx, created.ID, s.Revision()))
	require.ErrorIs(t, s.Delete(ctx, created.ID, s.Revision()), ErrNotFound)

	_, err = s.GetByID(created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMetadata_TracksMutations(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	before := s.Metadata()
	require.Equal(t, 0, before.TotalBooks)
	require.Equal(t, "1.0", before.Version)

	_, err := s.Create(ctx, sample("One"))
	require.NoError(t, err)
	_, err = s.Create(ctx, sample("Two"))
	require.NoError(t, err)

	after := s.Metadata()
	require.Equal(t, 2, after.TotalBooks)
	require.False(t, after.LastUpdated.Before(before.LastUpdated))
}

func TestReopen_LoadsDurableState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	created, err := s.Create(ctx, sample("Persisted"))
	require.NoError(t, err)
	rev := s.Revision()

	s2, err := Open(path)
	require.NoError(t, err)

	got, err := s2.GetByID(created.ID)
	require.NoError(t, err)
	require.Equal(t, "Persisted", got.Title)
	require.Equal(t, rev, s2.Revision())

	// ids keep climbing from durable state, not from a fresh counter
	b, err := s2.Create(ctx, sample("Next"))
	require.NoError(t, err)
	require.Equal(t, created.ID+1, b.ID)
}

func TestCreate_CancelledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Create(ctx, sample("Never"))
	require.Error(t, err)

	// nothing partial was applied
	books, _ := s.List()
	require.Empty(t, books)
}

func TestList_ReturnsCopy(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, sample("Immutable"))
	require.NoError(t, err)

	books, _ := s.List()
	books[0].Title = "Mutated"

	got, err := s.GetByID(books[0].ID)
	require.NoError(t, err)
	require.Equal(t, "Immutable", got.Title)
}

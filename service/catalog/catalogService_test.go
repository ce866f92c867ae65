package catalogsvc_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lena-biju/library-managment/model"
	"github.com/lena-biju/library-managment/repository/catalog"
	catalogsvc "github.com/lena-biju/library-managment/service/catalog"
)

func newSvc(t *testing.T) catalogsvc.Service {
	t.Helper()
	store, err := catalog.Open(filepath.Join(t.TempDir(), "books.json"))
	require.NoError(t, err)
	return catalogsvc.New(store)
}

func TestCreate_Validation(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	cases := map[string]model.CreateBookReq{
		"empty title":        {Price: 10, RentPrice: 1},
		"negative price":     {Title: "x", Price: -1},
		"negative rentPrice": {Title: "x", RentPrice: -1},
		"rating above 5":     {Title: "x", Rating: 5.5},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(ctx, req)
			require.ErrorIs(t, err, catalogsvc.ErrInvalid)
		})
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	b, err := s.Create(ctx, model.CreateBookReq{Title: "Dune", Price: 20, RentPrice: 4})
	require.NoError(t, err)
	require.Equal(t, int64(1), b.ID)

	rev := s.Revision()
	updated, newRev, err := s.Update(ctx, b.ID, rev, model.CreateBookReq{Title: "Dune Messiah", Price: 22, RentPrice: 4})
	require.NoError(t, err)
	require.Equal(t, "Dune Messiah", updated.Title)
	require.NotEqual(t, rev, newRev)

	// stale token from before the update
	_, _, err = s.Update(ctx, b.ID, rev, model.CreateBookReq{Title: "Clobber", Price: 1})
	require.ErrorIs(t, err, catalog.ErrConflict)

	require.NoError(t, s.Delete(ctx, b.ID, newRev))
	_, err = s.Detail(ctx, b.ID)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestList(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	_, err := s.Create(ctx, model.CreateBookReq{Title: "A"})
	require.NoError(t, err)
	_, err = s.Create(ctx, model.CreateBookReq{Title: "B"})
	require.NoError(t, err)

	books, rev, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	require.Equal(t, s.Revision(), rev)
}

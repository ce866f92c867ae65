package catalogsvc

import (
	"context"
	"errors"

	"github.com/lena-biju/library-managment/model"
	"github.com/lena-biju/library-managment/repository/catalog"
)

var ErrInvalid = errors.New("invalid book payload")

// Store is what the catalog repository provides.
type Store interface {
	List() ([]model.Book, string)
	GetByID(id int64) (*model.Book, error)
	Create(ctx context.Context, b model.Book) (*model.Book, error)
	Update(ctx context.Context, id int64, rev string, b model.Book) (*model.Book, string, error)
	Delete(ctx context.Context, id int64, rev string) error
	Revision() string
	Metadata() catalog.Metadata
}

type Service interface {
	List(ctx context.Context) ([]model.Book, string, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Create(ctx context.Context, req model.CreateBookReq) (*model.Book, error)
	Update(ctx context.Context, id int64, rev string, req model.CreateBookReq) (*model.Book, string, error)
	Delete(ctx context.Context, id int64, rev string) error
	Revision() string
}

type service struct{ s Store }

func New(s Store) Service { return &service{s: s} }

func validate(req model.CreateBookReq) error {
	if req.Title == "" || req.Price < 0 || req.RentPrice < 0 || req.Rating < 0 || req.Rating > 5 {
		return ErrInvalid
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]model.Book, string, error) {
	books, rev := s.s.List()
	return books, rev, nil
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return s.s.GetByID(id)
}

func (s *service) Create(ctx context.Context, req model.CreateBookReq) (*model.Book, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	return s.s.Create(ctx, req.Book())
}

func (s *service) Update(ctx context.Context, id int64, rev string, req model.CreateBookReq) (*model.Book, string, error) {
	if err := validate(req); err != nil {
		return nil, "", err
	}
	return s.s.Update(ctx, id, rev, req.Book())
}

func (s *service) Delete(ctx context.Context, id int64, rev string) error {
	return s.s.Delete(ctx, id, rev)
}

func (s *service) Revision() string { return s.s.Revision() }

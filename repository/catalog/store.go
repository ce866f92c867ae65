// Package catalog persists the book collection as a single JSON document:
// every mutation rewrites the whole file atomically and bumps the revision
// token, so two concurrent administrative edits can never silently clobber
// each other.
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lena-biju/library-managment/model"
)

var (
	ErrNotFound = errors.New("book not found")
	ErrConflict = errors.New("stale revision")
	ErrStorage  = errors.New("catalog storage failure")
)

const schemaVersion = "1.0"

type Metadata struct {
	TotalBooks  int       `json:"total_books"`
	LastUpdated time.Time `json:"last_updated"`
	Version     string    `json:"version"`
}

type Document struct {
	Books    []model.Book `json:"books"`
	Metadata Metadata     `json:"metadata"`
}

// Store is the durable book collection. Writers are serialized on writeMu
// for the full read-modify-write; readers only take the snapshot lock, so
// list/get never wait on a file write in progress.
type Store struct {
	path string

	writeMu sync.Mutex // serializes mutations end to end

	mu  sync.RWMutex // guards doc and rev
	doc Document
	rev string
}

// Open loads the document at path, creating an empty one (and its parent
// directory) if the file does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		doc := Document{
			Books:    []model.Book{},
			Metadata: Metadata{TotalBooks: 0, LastUpdated: time.Now().UTC(), Version: schemaVersion},
		}
		rev, err := s.persist(context.Background(), doc)
		if err != nil {
			return nil, err
		}
		s.doc, s.rev = doc, rev
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: corrupt document: %v", ErrStorage, err)
	}
	s.doc = doc
	s.rev = revisionOf(raw)
	return s, nil
}

// List returns all books plus the current revision token. Order is the
// stored order, which is stable between mutations.
func (s *Store) List() ([]model.Book, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Book, len(s.doc.Books))
	copy(out, s.doc.Books)
	return out, s.rev
}

func (s *Store) GetByID(id int64) (*model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.doc.Books {
		if s.doc.Books[i].ID == id {
			b := s.doc.Books[i]
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

// Revision returns the token a writer must present on update/delete.
func (s *Store) Revision() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

func (s *Store) Metadata() Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Metadata
}

// Create allocates max(id)+1 against the current durable state, not a
// client snapshot, so interleaved creates can never collide.
func (s *Store) Create(ctx context.Context, b model.Book) (*model.Book, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.current()
	var maxID int64
	for i := range cur.Books {
		if cur.Books[i].ID > maxID {
			maxID = cur.Books[i].ID
		}
	}
	b.ID = maxID + 1

	next := cur
	next.Books = append(append([]model.Book{}, cur.Books...), b)
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return &b, nil
}

// Update replaces the record with the given id. rev must match the current
// durable revision or the write is rejected with ErrConflict.
func (s *Store) Update(ctx context.Context, id int64, rev string, b model.Book) (*model.Book, string, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if rev != s.revision() {
		return nil, "", ErrConflict
	}

	cur := s.current()
	idx := -1
	for i := range cur.Books {
		if cur.Books[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, "", ErrNotFound
	}

	b.ID = id // id is immutable once assigned
	next := cur
	next.Books = append([]model.Book{}, cur.Books...)
	next.Books[idx] = b
	if err := s.commit(ctx, next); err != nil {
		return nil, "", err
	}
	return &b, s.revision(), nil
}

func (s *Store) Delete(ctx context.Context, id int64, rev string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if rev != s.revision() {
		return ErrConflict
	}

	cur := s.current()
	idx := -1
	for i := range cur.Books {
		if cur.Books[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	next := cur
	next.Books = append([]model.Book{}, cur.Books...)
	next.Books = append(next.Books[:idx], next.Books[idx+1:]...)
	return s.commit(ctx, next)
}

func (s *Store) current() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

func (s *Store) revision() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// commit stamps the metadata, persists the whole document in one durable
// write and only then swaps the in-memory snapshot.
func (s *Store) commit(ctx context.Context, doc Document) error {
	doc.Metadata.TotalBooks = len(doc.Books)
	doc.Metadata.LastUpdated = time.Now().UTC()
	doc.Metadata.Version = schemaVersion

	rev, err := s.persist(ctx, doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc, s.rev = doc, rev
	s.mu.Unlock()
	return nil
}

// persist writes to a temp file in the same directory and renames it over
// the document, so a cancelled or crashed write leaves either the old or
// the new document, never a partial one.
func (s *Store) persist(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".books-*.json")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return revisionOf(raw), nil
}

func revisionOf(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

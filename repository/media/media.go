// Package media stores uploaded images and hands back the path references
// consumed as cover_image / profile_picture. The core never interprets the
// file bytes.
package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

type localStore struct{ dir string }

func NewLocal(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &localStore{dir: dir}, nil
}

func (s *localStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stored := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(name))
	dst := filepath.Join(s.dir, stored)

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}

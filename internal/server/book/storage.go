package book

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrUnsupportedImage = errors.New("cover must be a jpg, png, webp or gif image")

// CoverStore keeps uploaded cover images and returns the path they are served under.
type CoverStore interface {
	Save(filename string, data []byte) (string, error)
}

// DiskStore writes covers below dir/books; dir is served at /storage.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (s *DiskStore) Save(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
	default:
		return "", ErrUnsupportedImage
	}
	rel := path.Join("books", uuid.NewString()+ext)
	full := filepath.Join(s.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", errors.Wrap(err, "create cover dir")
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write cover")
	}
	return rel, nil
}

package upload

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrOutsideRoot = errors.New("path escapes uploads root")

// Storage writes uploaded files under a public uploads directory, organized
// by entity type (imoveis, corretores), and maps public URLs back to disk
// paths.
type Storage struct {
	root   string
	prefix string
}

// NewStorage creates upload storage rooted at dir, served under prefix
// (e.g. "/uploads").
func NewStorage(dir, prefix string) *Storage {
	return &Storage{
		root:   filepath.Clean(dir),
		prefix: strings.TrimSuffix(prefix, "/"),
	}
}

// Root returns the on-disk uploads root
func (s *Storage) Root() string {
	return s.root
}

// PublicPrefix returns the URL prefix files are served under
func (s *Storage) PublicPrefix() string {
	return s.prefix
}

// Save stores one multipart file under <root>/<entity>/ with a random name,
// preserving the original extension, and returns its public URL. Random
// names keep concurrent uploads from colliding.
func (s *Storage) Save(file *multipart.FileHeader, entity string) (string, error) {
	dir := filepath.Join(s.root, entity)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := uuid.NewString() + ext
	dst := filepath.Join(dir, name)

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := out.ReadFrom(src); err != nil {
		os.Remove(dst)
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", s.prefix, entity, name), nil
}

// Resolve maps a public upload URL to its on-disk path. URLs that do not
// start with the public prefix or that escape the uploads root are rejected.
func (s *Storage) Resolve(publicURL string) (string, error) {
	if !strings.HasPrefix(publicURL, s.prefix+"/") {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, publicURL)
	}
	rel := strings.TrimPrefix(publicURL, s.prefix+"/")

	path := filepath.Join(s.root, filepath.FromSlash(rel))
	cleaned := filepath.Clean(path)
	if cleaned != s.root && !strings.HasPrefix(cleaned, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, publicURL)
	}
	return cleaned, nil
}

// Remove unlinks the file behind a public URL. A missing file is not an
// error; the backup copy in the archival store is unaffected either way.
func (s *Storage) Remove(publicURL string) error {
	path, err := s.Resolve(publicURL)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["file"][0]
}

func TestSaveAndResolve(t *testing.T) {
	storage := NewStorage(t.TempDir(), "/uploads")

	url, err := storage.Save(multipartFile(t, "casa.JPG", []byte("foto")), "imoveis")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/imoveis/"))
	// Extension is lowercased, name is randomized
	assert.True(t, strings.HasSuffix(url, ".jpg"))
	assert.NotContains(t, url, "casa")

	path, err := storage.Resolve(url)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("foto"), data)
}

func TestResolveRejectsForeignPrefix(t *testing.T) {
	storage := NewStorage(t.TempDir(), "/uploads")

	_, err := storage.Resolve("/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestResolveRejectsTraversal(t *testing.T) {
	storage := NewStorage(t.TempDir(), "/uploads")

	_, err := storage.Resolve("/uploads/../../../etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestRemove(t *testing.T) {
	storage := NewStorage(t.TempDir(), "/uploads")

	url, err := storage.Save(multipartFile(t, "v.mp4", []byte("video")), "imoveis")
	require.NoError(t, err)
	path, err := storage.Resolve(url)
	require.NoError(t, err)

	require.NoError(t, storage.Remove(url))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing again is not an error
	assert.NoError(t, storage.Remove(url))
}

func TestSaveCreatesEntityDir(t *testing.T) {
	root := t.TempDir()
	storage := NewStorage(root, "/uploads")

	_, err := storage.Save(multipartFile(t, "p.png", []byte("x")), "corretores")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, "corretores"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

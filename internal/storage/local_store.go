package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalImageStore guarda imágenes en disco; el router las sirve bajo /uploads.
type LocalImageStore struct {
	root     string
	baseURL  string
	maxBytes int64
}

func NewLocalImageStore(root, publicBaseURL string, maxBytes int64) *LocalImageStore {
	return &LocalImageStore{
		root:     root,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
		maxBytes: maxBytes,
	}
}

func (s *LocalImageStore) Root() string {
	return s.root
}

func (s *LocalImageStore) Put(ctx context.Context, folder string, upload Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	upload, err := sniffImage(upload)
	if err != nil {
		return "", err
	}

	folder = cleanFolder(folder)
	dir := filepath.Join(s.root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := objectName(upload.Filename)
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	reader := upload.Body
	if s.maxBytes > 0 {
		reader = io.LimitReader(reader, s.maxBytes+1)
	}
	n, err := io.Copy(f, reader)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = fmt.Errorf("%w: file too large", ErrUnsupportedImage)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}

	return s.baseURL + "/uploads/" + folder + "/" + name, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel, ok := strings.CutPrefix(url, s.baseURL+"/uploads/")
	if !ok || rel == "" {
		return nil
	}
	path := filepath.Join(s.root, filepath.FromSlash(cleanFolder(rel)))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}

package storage

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

// Upload describe un archivo recibido por multipart listo para almacenar.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore guarda imágenes y devuelve la URL pública donde quedan servidas.
// Delete ignora URLs que no pertenecen al store y objetos ya borrados.
type ImageStore interface {
	Put(ctx context.Context, folder string, upload Upload) (string, error)
	Delete(ctx context.Context, url string) error
}

const sniffLen = 512

// sniffImage valida el contenido real del archivo; el Content-Type del cliente no se usa.
func sniffImage(upload Upload) (Upload, error) {
	if upload.Body == nil {
		return Upload{}, ErrUnsupportedImage
	}
	br := bufio.NewReaderSize(upload.Body, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return Upload{}, err
	}
	if len(head) == 0 {
		return Upload{}, ErrUnsupportedImage
	}
	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return Upload{}, ErrUnsupportedImage
	}
	upload.ContentType = contentType
	upload.Body = br
	return upload, nil
}

func objectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return uuid.NewString() + ext
}

func cleanFolder(folder string) string {
	folder = strings.Trim(filepath.ToSlash(filepath.Clean("/"+folder)), "/")
	if folder == "" || folder == "." {
		return "misc"
	}
	return folder
}

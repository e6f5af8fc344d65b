package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodhub/internal/service"
	"foodhub/internal/storage"
)

// formImage abre el archivo multipart del campo indicado. Sin archivo devuelve (nil, noop, nil).
// El cierre queda a cargo del llamador vía la función devuelta.
func formImage(c *gin.Context, field string) (*storage.Upload, func(), error) {
	noop := func() {}
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, fmt.Errorf("%w: invalid multipart form", service.ErrValidation)
	}
	file, err := header.Open()
	if err != nil {
		return nil, noop, err
	}
	upload := &storage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return upload, func() { _ = file.Close() }, nil
}

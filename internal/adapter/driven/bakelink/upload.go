package bakelink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
)

// UploadService serves the file upload endpoint.
type UploadService struct {
	p *Pipeline
}

// Upload sends r as the multipart form field "file" named after filename.
func (s *UploadService) Upload(ctx context.Context, filename string, r io.Reader) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copying %s into form: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	return s.p.Post(ctx, "/UploadFile", &buf, WithHeader("Content-Type", mw.FormDataContentType()))
}

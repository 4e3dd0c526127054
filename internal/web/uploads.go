package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mkrupp/skillsphere/internal/domain"
)

// formOverhead is the room left for the other fields and the multipart
// framing next to a staged image.
const formOverhead = 64 << 10

// imageLimit bounds a profile form. Its image must fit a draft.
func (h *Handler) imageLimit() int64 {
	return min(h.svc.Drafts.MaxSize()+formOverhead, h.cfg.MaxUploadSize)
}

// parseMultipart bounds the request body to limit bytes and parses the multipart form.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(h.cfg.MultipartMaxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errors.Join(domain.ErrUploadTooLarge, err)
		}

		return fmt.Errorf("parse multipart form: %w", err)
	}

	return nil
}

// formUpload reads the file sent as field into an Upload owned by the
// request's session. It returns nil if no file was chosen.
//
//nolint:nilnil
func formUpload(r *http.Request, field string) (*domain.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("form file %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", header.Filename, err)
	}

	upload := domain.NewUpload(data, domain.UploadMeta{ //nolint:exhaustruct
		Filename: header.Filename,
		Owner:    sessionID(r),
		MIMEType: header.Header.Get("Content-Type"),
	})

	return &upload, nil
}

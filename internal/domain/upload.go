package domain

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrUploadTooLarge is returned when an upload exceeds its size limit.
	ErrUploadTooLarge = errors.New("upload too large")
	// ErrUploadType is returned when an upload has a disallowed content type.
	ErrUploadType = errors.New("upload type not allowed")
	// ErrNoDraftID is returned when a draft ID is required but not provided.
	ErrNoDraftID = errors.New("no draft ID")
)

// genericMIMETypes are declared types that say nothing about the content.
//
//nolint:gochecknoglobals
var genericMIMETypes = []string{"", "application/octet-stream", "binary/octet-stream"}

// DraftID identifies a staged upload. It starts with the owning session ID
// so all drafts of a session share a storage prefix.
type DraftID = BlobID

// Upload is a file selected in a form, held in memory until it is submitted.
type Upload struct {
	data []byte
	meta UploadMeta
}

// NewUpload creates an Upload and derives the hash, size and ID metadata.
func NewUpload(data []byte, meta UploadMeta) Upload {
	upload := Upload{data: data, meta: meta}
	upload.meta.update(data)

	return upload
}

// ID returns the draft ID.
func (u Upload) ID() DraftID {
	return u.meta.ID
}

// Meta returns the upload metadata.
func (u Upload) Meta() UploadMeta {
	return u.meta
}

func (u Upload) Filename() string {
	return u.meta.Filename
}

func (u Upload) MIMEType() string {
	return u.meta.MIMEType
}

// Owner returns the session ID the upload belongs to.
func (u Upload) Owner() string {
	return u.meta.Owner
}

func (u Upload) Bytes() []byte {
	return u.data
}

// Size returns the content size in bytes.
func (u Upload) Size() int64 {
	return int64(len(u.data))
}

// Read returns a reader over the content.
func (u Upload) Read() io.Reader {
	return bytes.NewReader(u.data)
}

// WithMIMEType returns a copy carrying a corrected content type.
func (u Upload) WithMIMEType(mimeType string) Upload {
	u.meta.MIMEType = mimeType
	u.meta.update(u.data)

	return u
}

// Sniffed returns a copy whose MIME type is detected from the content when the
// declared type is missing or generic. Parameters such as charset are dropped.
func (u Upload) Sniffed() Upload {
	declared := baseMIMEType(u.meta.MIMEType)
	if slices.Contains(genericMIMETypes, declared) {
		declared = baseMIMEType(mimetype.Detect(u.data).String())
	}

	return u.WithMIMEType(declared)
}

func baseMIMEType(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")

	return strings.ToLower(strings.TrimSpace(base))
}

// AsBlob converts the upload content to a Blob stored under the draft ID.
func (u Upload) AsBlob() *Blob {
	return NewBlob(u.meta.ID, u.data)
}

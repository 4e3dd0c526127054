package domain

import (
	"fmt"
	"io"
)

// Blob is a stored byte payload: the content or the metadata of a draft.
type Blob struct {
	ID   BlobID
	Body []byte
}

func NewBlob(id BlobID, body []byte) *Blob {
	return &Blob{ID: id, Body: body}
}

func (blob *Blob) Size() int64 {
	return int64(len(blob.Body))
}

func (blob *Blob) Bytes() []byte {
	return blob.Body
}

// WriteTo implements io.WriterTo.
func (blob *Blob) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(blob.Body)
	if err != nil {
		return int64(n), fmt.Errorf("write: %w", err)
	}

	return int64(n), nil
}

// ReadFrom implements io.ReaderFrom, replacing the body.
func (blob *Blob) ReadFrom(r io.Reader) (int64, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return int64(len(body)), fmt.Errorf("read all: %w", err)
	}

	blob.Body = body

	return int64(len(body)), nil
}

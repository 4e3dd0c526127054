package domain

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/mkrupp/skillsphere/internal/util/encoding"
)

// UploadMeta describes an Upload.
//
//nolint:recvcheck
type UploadMeta struct {
	ID       DraftID `json:"id"`       // Session-prefixed identifier
	Filename string  `json:"filename"` // Original filename
	Hash     string  `json:"hash"`     // Content hash (Crockford Base32)
	Size     int64   `json:"size"`     // Size in bytes
	Owner    string  `json:"owner"`    // Owning session ID
	MIMEType string  `json:"mimeType"` // Declared or sniffed MIME type
}

// NewUploadMetaFromBlob decodes metadata stored by AsBlob.
func NewUploadMetaFromBlob(blob *Blob) (UploadMeta, error) {
	var meta UploadMeta
	if err := json.Unmarshal(blob.Bytes(), &meta); err != nil {
		return UploadMeta{}, fmt.Errorf("unmarshal metadata: %w", err)
	}

	return meta, nil
}

// AsBlob encodes the metadata as a JSON blob stored under the draft ID.
func (meta UploadMeta) AsBlob() (*Blob, error) {
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	return NewBlob(meta.ID, data), nil
}

func (meta *UploadMeta) update(data []byte) {
	hasher := sha256.New()
	hasher.Write(data)
	meta.Hash = encoding.EncodeCrockfordB32LC(hasher.Sum(nil))
	meta.Size = int64(len(data))

	hasher.Reset()
	hasher.Write([]byte(meta.Hash))
	hasher.Write([]byte(meta.Filename))
	hasher.Write([]byte(meta.MIMEType))
	meta.ID = DraftID(meta.Owner + encoding.EncodeCrockfordB32LC(hasher.Sum(nil))[:20])
}

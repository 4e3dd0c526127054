package domain

// BlobID is a string-based identifier for blob objects.
// Draft blobs use the owning session ID followed by a content-derived suffix.
type BlobID string

// String returns the string representation of the BlobID.
func (id BlobID) String() string {
	return string(id)
}

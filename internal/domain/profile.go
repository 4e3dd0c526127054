package domain

import "strings"

// MaxProfileImageSize is the largest accepted profile image.
const MaxProfileImageSize = 2 * 1024 * 1024

// IsImageMIMEType reports whether mimeType is an image/* type.
func IsImageMIMEType(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// ProfileUpdate carries only the fields that changed. A nil Name keeps the
// current name and a nil Image keeps the current image.
type ProfileUpdate struct {
	Name  *string
	Image *Upload
}

// Empty reports whether nothing changed.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.Image == nil
}

// ProfileUpdateResponse is the body of PUT /api/users/profile.
type ProfileUpdateResponse struct {
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
}

package profilesvc

import (
	"context"

	"github.com/mkrupp/skillsphere/internal/domain"
)

// Messages shown on the profile page.
const (
	MsgUpdated       = "Profile updated successfully"
	MsgUpdateFailed  = "Failed to update profile"
	MsgImageType     = "Please upload an image file"
	MsgImageTooLarge = "Image size should be less than 2MB"
	MsgNameRequired  = "Name is required"
	MsgLoadFailed    = "Failed to load profile"
)

// Preview is a staged profile image ready to be shown before it is saved.
type Preview struct {
	Meta domain.UploadMeta
	// DataURL embeds the thumbnail; empty if the image could not be decoded.
	DataURL string
}

// Edit is the submitted profile form. Image takes precedence over DraftID.
type Edit struct {
	Name    string
	DraftID domain.DraftID
	Image   *domain.Upload
}

// ProfileService edits the session user's profile.
type ProfileService interface {
	// ValidateImage checks the image rules: at most 2MB and an image/* type.
	ValidateImage(upload domain.Upload) error

	// StageImage validates the image, stages it as a draft of the session in
	// ctx and renders its preview.
	StageImage(ctx context.Context, upload domain.Upload) (Preview, error)

	// Preview renders the preview of a staged image of the session in ctx.
	Preview(ctx context.Context, draftID domain.DraftID) (Preview, error)

	// Discard drops a staged image. The profile itself is left untouched.
	Discard(ctx context.Context, draftID domain.DraftID) error

	// Update sends only the fields that differ from the current profile and
	// refreshes the session. With nothing changed it makes no network call
	// and reports changed as false.
	Update(ctx context.Context, sessionID string, edit Edit) (view domain.View, changed bool, err error)
}

package profilesvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vincent-petithory/dataurl"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
	"github.com/mkrupp/skillsphere/internal/svc/draftsvc"
	"github.com/mkrupp/skillsphere/internal/svc/sessionsvc"
)

const (
	profilePath = "/api/users/profile"

	nameField  = "name"
	imageField = "profile-image"
)

// APIProfileService implements ProfileService against the REST backend.
// Staged images are kept by a DraftService until the profile is saved.
type APIProfileService struct {
	api      apiclient.Client
	sessions sessionsvc.SessionService
	drafts   draftsvc.DraftService
	cfg      ProfileConfig
	log      logging.Logger
}

var _ ProfileService = (*APIProfileService)(nil)

// NewAPIProfileService creates a new APIProfileService.
func NewAPIProfileService(
	api apiclient.Client,
	sessions sessionsvc.SessionService,
	drafts draftsvc.DraftService,
	cfg ProfileConfig,
) (*APIProfileService, error) {
	if _, err := getInterpolatorByName(cfg.Interpolator); err != nil {
		return nil, err
	}

	return &APIProfileService{
		api:      api,
		sessions: sessions,
		drafts:   drafts,
		cfg:      cfg,
		log:      logging.GetLogger("svc.profilesvc.api_profile_service"),
	}, nil
}

// ValidateImage implements ProfileService.ValidateImage.
func (s *APIProfileService) ValidateImage(upload domain.Upload) error {
	switch {
	case upload.Size() > domain.MaxProfileImageSize:
		return errors.Join(domain.ErrUploadTooLarge, domain.ValidationErrors{"image": MsgImageTooLarge})
	case !domain.IsImageMIMEType(upload.MIMEType()):
		return errors.Join(domain.ErrUploadType, domain.ValidationErrors{"image": MsgImageType})
	default:
		return nil
	}
}

// StageImage implements ProfileService.StageImage.
func (s *APIProfileService) StageImage(ctx context.Context, upload domain.Upload) (Preview, error) {
	upload = upload.Sniffed()

	if err := s.ValidateImage(upload); err != nil {
		return Preview{}, err
	}

	if _, err := s.drafts.Stage(ctx, upload); err != nil {
		return Preview{}, fmt.Errorf("stage image: %w", err)
	}

	return s.preview(ctx, upload), nil
}

// Preview implements ProfileService.Preview.
func (s *APIProfileService) Preview(ctx context.Context, draftID domain.DraftID) (Preview, error) {
	upload, err := s.drafts.Fetch(ctx, draftID)
	if err != nil {
		return Preview{}, fmt.Errorf("fetch draft: %w", err)
	}

	return s.preview(ctx, upload), nil
}

func (s *APIProfileService) preview(ctx context.Context, upload domain.Upload) Preview {
	preview := Preview{Meta: upload.Meta()}

	thumb, mimeType, err := thumbnail(upload.Bytes(), upload.MIMEType(), s.cfg.PreviewWidth, s.cfg.Interpolator)
	if err != nil {
		// Formats without a decoder are still accepted; the page links the original.
		s.log.DebugContext(ctx, "image preview skipped", "type", upload.MIMEType(), "error", err)

		return preview
	}

	preview.DataURL = dataurl.New(thumb, mimeType).String()

	return preview
}

// Discard implements ProfileService.Discard.
func (s *APIProfileService) Discard(ctx context.Context, draftID domain.DraftID) error {
	if draftID == "" {
		return nil
	}

	if err := s.drafts.Discard(ctx, draftID); err != nil {
		return fmt.Errorf("discard draft: %w", err)
	}

	return nil
}

// Update implements ProfileService.Update.
func (s *APIProfileService) Update(
	ctx context.Context,
	sessionID string,
	edit Edit,
) (view domain.View, changed bool, err error) {
	log := s.log.With(logging.Group("profile", "session", sessionID))

	defer func() {
		switch {
		case err != nil:
			log.ErrorContext(ctx, "profile update failed", "error", err)
		case changed:
			log.DebugContext(ctx, "profile updated")
		default:
			log.DebugContext(ctx, "profile unchanged")
		}
	}()

	current, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("current profile: %w", err)
	}

	update, err := s.diff(ctx, current.Account(), edit)
	if err != nil {
		return current, false, err
	}

	if update.Empty() {
		return current, false, nil
	}

	token, err := s.sessions.Token(ctx, sessionID)
	if err != nil {
		return current, false, fmt.Errorf("get token: %w", err)
	}

	form := apiclient.NewForm()
	if update.Name != nil {
		form.Field(nameField, *update.Name)
	}

	if update.Image != nil {
		form.File(imageField, update.Image.Filename(), update.Image.MIMEType(), update.Image.Read())
	}

	var resp domain.ProfileUpdateResponse

	if err := s.api.Do(ctx, apiclient.Call{
		Method: http.MethodPut,
		Path:   profilePath,
		Token:  token,
		Form:   form,
	}, &resp); err != nil {
		return current, false, fmt.Errorf("update profile: %w", err)
	}

	if edit.DraftID != "" {
		if err := s.drafts.Discard(ctx, edit.DraftID); err != nil {
			log.WarnContext(ctx, "discard saved draft failed", "error", err)
		}
	}

	view, err = s.sessions.Refresh(ctx, sessionID)
	if err != nil {
		return current, true, fmt.Errorf("refresh profile: %w", err)
	}

	return view, true, nil
}

// diff builds the update holding only what differs from user.
func (s *APIProfileService) diff(ctx context.Context, user domain.User, edit Edit) (domain.ProfileUpdate, error) {
	var update domain.ProfileUpdate

	name := strings.TrimSpace(edit.Name)
	if name == "" {
		return update, domain.ValidationErrors{"name": MsgNameRequired}
	}

	if name != user.Name {
		update.Name = &name
	}

	image := edit.Image
	if image == nil && edit.DraftID != "" {
		staged, err := s.drafts.Fetch(ctx, edit.DraftID)
		if err != nil {
			return update, fmt.Errorf("fetch draft: %w", err)
		}

		image = &staged
	}

	if image != nil {
		sniffed := image.Sniffed()
		if err := s.ValidateImage(sniffed); err != nil {
			return update, err
		}

		update.Image = &sniffed
	}

	return update, nil
}

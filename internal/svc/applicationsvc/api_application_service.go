package applicationsvc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
	"github.com/mkrupp/skillsphere/internal/svc/sessionsvc"
	"github.com/mkrupp/skillsphere/internal/util/validation"
)

const (
	myApplicationsPath       = "/api/jobs/my-applications"
	employerApplicationsPath = "/api/jobs/employer/applications"
)

//nolint:gochecknoglobals
var draftMessages = validation.Messages{
	"coverLetter.notblank": MsgCoverLetterRequired,
	"coverLetter.max":      MsgCoverLetterTooLong,
}

// APIApplicationService implements ApplicationService against the REST backend.
type APIApplicationService struct {
	api      apiclient.Client
	tokens   sessionsvc.TokenSource
	cfg      ApplicationConfig
	validate *validator.Validate
	log      logging.Logger
}

var _ ApplicationService = (*APIApplicationService)(nil)

// NewAPIApplicationService creates a new APIApplicationService.
func NewAPIApplicationService(
	api apiclient.Client,
	tokens sessionsvc.TokenSource,
	cfg ApplicationConfig,
) *APIApplicationService {
	return &APIApplicationService{
		api:      api,
		tokens:   tokens,
		cfg:      cfg,
		validate: validation.New(),
		log:      logging.GetLogger("svc.applicationsvc.api_application_service"),
	}
}

// Mine implements ApplicationService.Mine.
func (s *APIApplicationService) Mine(ctx context.Context, sessionID string) ([]domain.Application, error) {
	return s.list(ctx, sessionID, myApplicationsPath)
}

// ForEmployer implements ApplicationService.ForEmployer.
func (s *APIApplicationService) ForEmployer(ctx context.Context, sessionID string) ([]domain.Application, error) {
	return s.list(ctx, sessionID, employerApplicationsPath)
}

func (s *APIApplicationService) list(ctx context.Context, sessionID, path string) (apps []domain.Application, err error) {
	log := s.log.With(logging.Group("list", "path", path))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "fetch applications failed", "error", err)
		} else {
			log.DebugContext(ctx, "applications fetched", "count", len(apps))
		}
	}()

	token, err := s.tokens.Token(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	if err := s.api.Do(ctx, apiclient.Call{
		Method:  http.MethodGet,
		Path:    path,
		Token:   token,
		Timeout: s.cfg.ListTimeout,
	}, &apps); err != nil {
		return nil, fmt.Errorf("fetch applications: %w", err)
	}

	for i := range apps {
		apps[i].Status = apps[i].Status.Normalized()
	}

	return apps, nil
}

// Validate checks the draft without submitting it. The resume size rule is
// checked after the type rule so an oversized file reports its size.
func (s *APIApplicationService) Validate(ctx context.Context, draft domain.ApplicationDraft) error {
	verrs := domain.ValidationErrors{}

	if err := validation.Struct(ctx, s.validate, draft, draftMessages); err != nil {
		fieldErrs, ok := domain.AsValidationErrors(err)
		if !ok {
			return err
		}

		verrs = fieldErrs
	}

	switch resume := draft.Resume; {
	case resume == nil || resume.Size() == 0:
		verrs.Set("resume", MsgResumeRequired)
	default:
		if !domain.IsResumeMIMEType(resume.MIMEType()) {
			verrs.Set("resume", MsgResumeType)
		}

		if resume.Size() > domain.MaxResumeSize {
			verrs.Set("resume", MsgResumeTooLarge)
		}
	}

	return verrs.Err()
}

// Apply implements ApplicationService.Apply.
func (s *APIApplicationService) Apply(ctx context.Context, sessionID string, draft domain.ApplicationDraft) (err error) {
	draft.JobID = strings.TrimSpace(draft.JobID)

	log := s.log.With(logging.Group("application", "job", draft.JobID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "submit application failed", "error", err)
		} else {
			log.DebugContext(ctx, "application submitted")
		}
	}()

	if draft.Resume != nil {
		resume := draft.Resume.Sniffed()
		draft.Resume = &resume
	}

	if err := s.Validate(ctx, draft); err != nil {
		return err
	}

	if draft.JobID == "" {
		return ErrNoJob
	}

	token, err := s.tokens.Token(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}

	form := apiclient.NewForm().
		File("resume", draft.Resume.Filename(), draft.Resume.MIMEType(), draft.Resume.Read()).
		Field("coverLetter", draft.CoverLetter)

	if err := s.api.Do(ctx, apiclient.Call{
		Method:  http.MethodPost,
		Path:    "/api/jobs/" + url.PathEscape(draft.JobID) + "/apply",
		Token:   token,
		Form:    form,
		Timeout: s.cfg.ApplyTimeout,
	}, nil); err != nil {
		return fmt.Errorf("apply: %w", err)
	}

	return nil
}

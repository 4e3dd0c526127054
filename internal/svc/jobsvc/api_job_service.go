package jobsvc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
	"github.com/mkrupp/skillsphere/internal/svc/sessionsvc"
	"github.com/mkrupp/skillsphere/internal/util/validation"
)

const (
	jobsPath    = "/api/jobs"
	allJobsPath = "/api/jobs/all"
)

//nolint:gochecknoglobals
var postingMessages = validation.Messages{
	"title":       "Title is required",
	"description": "Description is required",
}

// APIJobService implements JobService against the REST backend.
type APIJobService struct {
	api      apiclient.Client
	tokens   sessionsvc.TokenSource
	validate *validator.Validate
	log      logging.Logger
}

var _ JobService = (*APIJobService)(nil)

// NewAPIJobService creates a new APIJobService.
func NewAPIJobService(api apiclient.Client, tokens sessionsvc.TokenSource) *APIJobService {
	return &APIJobService{
		api:      api,
		tokens:   tokens,
		validate: validation.New(),
		log:      logging.GetLogger("svc.jobsvc.api_job_service"),
	}
}

// Search implements JobService.Search.
func (s *APIJobService) Search(ctx context.Context, search domain.JobSearch) (jobs []domain.Job, err error) {
	query := search.Query()
	log := s.log.With(logging.Group("search", "query", query.Encode()))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "search jobs failed", "error", err)
		} else {
			log.DebugContext(ctx, "jobs found", "count", len(jobs))
		}
	}()

	if search.Empty() {
		return nil, ErrEmptySearch
	}

	if err := s.api.Do(ctx, apiclient.Call{
		Method: http.MethodGet,
		Path:   jobsPath,
		Query:  query,
	}, &jobs); err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}

	return jobs, nil
}

// All implements JobService.All.
func (s *APIJobService) All(ctx context.Context) (jobs []domain.Job, err error) {
	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "list jobs failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "jobs listed", "count", len(jobs))
		}
	}()

	if err := s.api.Do(ctx, apiclient.Call{
		Method: http.MethodGet,
		Path:   allJobsPath,
	}, &jobs); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	return jobs, nil
}

// Post implements JobService.Post.
func (s *APIJobService) Post(ctx context.Context, sessionID string, posting domain.JobPosting) (job domain.Job, err error) {
	posting = normalizePosting(posting)

	log := s.log.With(logging.Group("job", "title", posting.Title))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "post job failed", "error", err)
		} else {
			log.DebugContext(ctx, "job posted", "id", job.ID)
		}
	}()

	if err := validation.Struct(ctx, s.validate, posting, postingMessages); err != nil {
		return domain.Job{}, err
	}

	token, err := s.tokens.Token(ctx, sessionID)
	if err != nil {
		return domain.Job{}, fmt.Errorf("get token: %w", err)
	}

	if err := s.api.Do(ctx, apiclient.Call{
		Method: http.MethodPost,
		Path:   jobsPath,
		Token:  token,
		Body:   posting,
	}, &job); err != nil {
		return domain.Job{}, fmt.Errorf("post job: %w", err)
	}

	return job, nil
}

func normalizePosting(posting domain.JobPosting) domain.JobPosting {
	posting.Title = strings.TrimSpace(posting.Title)
	posting.Description = strings.TrimSpace(posting.Description)
	posting.Location = strings.TrimSpace(posting.Location)
	posting.Salary = strings.TrimSpace(posting.Salary)
	posting.Skills = domain.NormalizeSkills(posting.Skills)

	return posting
}

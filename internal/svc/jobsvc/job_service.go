package jobsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/skillsphere/internal/domain"
)

// ErrEmptySearch is returned when a search has neither skills nor a location.
var ErrEmptySearch = errors.New("no search filters")

// Toast messages for the dashboard.
const (
	MsgSearchFailed = "Failed to search jobs. Please try again."
	MsgPostSuccess  = "Job posted successfully!"
	MsgPostFailed   = "Failed to post job. Please try again."
)

// MsgFound is the toast shown after a successful search.
func MsgFound(n int) string {
	return fmt.Sprintf("Found %d jobs matching your criteria", n)
}

// JobService searches, lists and posts jobs.
type JobService interface {
	// Search runs a filtered search. An empty search fails with ErrEmptySearch
	// without a network call.
	Search(ctx context.Context, search domain.JobSearch) ([]domain.Job, error)

	// All lists every job.
	All(ctx context.Context) ([]domain.Job, error)

	// Post creates a job on behalf of the session's employer.
	Post(ctx context.Context, sessionID string, posting domain.JobPosting) (domain.Job, error)
}

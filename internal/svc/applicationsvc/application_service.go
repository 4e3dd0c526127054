package applicationsvc

import (
	"context"
	"errors"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
)

// Messages shown for application lists and submissions.
const (
	MsgFetchFailed        = "Failed to fetch applications"
	MsgApplySuccess       = "Application submitted successfully!"
	MsgApplyFailed        = "Failed to submit application"
	MsgLoginToApply       = "Please login to apply"
	MsgInvalidApplication = "Invalid application data"
	MsgJobNotFound        = "Job not found"
	MsgAlreadyApplied     = "You have already applied to this job"
	MsgTimedOut           = "Request timed out. Please try again."
	MsgAuthRequired       = "Authentication required"

	MsgCoverLetterRequired = "Cover letter is required"
	MsgCoverLetterTooLong  = "Cover letter must be less than 2000 characters"
	MsgResumeRequired      = "Resume is required"
	MsgResumeType          = "Only PDF and Word documents are allowed"
	MsgResumeTooLarge      = "File size must be less than 5MB"
)

// ErrNoJob is returned when an application names no job.
var ErrNoJob = errors.New("no job selected")

// ApplicationService lists and submits job applications.
type ApplicationService interface {
	// Mine lists the seeker's own applications.
	Mine(ctx context.Context, sessionID string) ([]domain.Application, error)

	// ForEmployer lists applications across the employer's postings.
	ForEmployer(ctx context.Context, sessionID string) ([]domain.Application, error)

	// Apply validates the draft and submits it. Invalid drafts fail with
	// domain.ValidationErrors keyed "coverLetter" and "resume" before any
	// network call.
	Apply(ctx context.Context, sessionID string, draft domain.ApplicationDraft) error
}

// Outcome is what the page shows after a failed list fetch or submission.
type Outcome struct {
	Message string
	// Redirect is the page to continue on, empty to stay.
	Redirect string
}

// ApplyOutcome maps a submission error to the message and follow-up page.
func ApplyOutcome(err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Message: MsgApplySuccess, Redirect: "/jobs"}
	case errors.Is(err, domain.ErrNoToken), errors.Is(err, domain.ErrUnauthenticated):
		return Outcome{Message: MsgLoginToApply, Redirect: "/login"}
	case errors.Is(err, domain.ErrBadRequest):
		return Outcome{Message: apiclient.MessageOr(err, MsgInvalidApplication)}
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, ErrNoJob):
		return Outcome{Message: MsgJobNotFound, Redirect: "/jobs"}
	case errors.Is(err, domain.ErrConflict):
		return Outcome{Message: MsgAlreadyApplied}
	case errors.Is(err, domain.ErrTimeout):
		return Outcome{Message: MsgTimedOut}
	default:
		return Outcome{Message: apiclient.MessageOr(err, MsgApplyFailed)}
	}
}

// ListOutcome maps a list fetch error to the message and follow-up page.
func ListOutcome(err error) Outcome {
	switch {
	case errors.Is(err, domain.ErrNoToken):
		return Outcome{Message: MsgAuthRequired, Redirect: "/login"}
	case errors.Is(err, domain.ErrUnauthenticated):
		return Outcome{Message: apiclient.MessageOr(err, MsgFetchFailed), Redirect: "/login"}
	case errors.Is(err, domain.ErrTimeout):
		return Outcome{Message: MsgTimedOut}
	default:
		return Outcome{Message: apiclient.MessageOr(err, MsgFetchFailed)}
	}
}

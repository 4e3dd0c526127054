package domain

import (
	"slices"
	"strings"
)

// Status is the server-side review state of an application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Label returns the capitalized status for display.
func (s Status) Label() string {
	if s == "" {
		return "Pending"
	}

	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Normalized maps unknown values to pending.
func (s Status) Normalized() Status {
	switch Status(strings.ToLower(string(s))) {
	case StatusAccepted:
		return StatusAccepted
	case StatusRejected:
		return StatusRejected
	default:
		return StatusPending
	}
}

// Limits enforced before an application is submitted.
const (
	MaxCoverLetterLength = 2000
	MaxResumeSize        = 5 * 1024 * 1024
)

// ResumeMIMETypes lists the accepted resume content types: PDF, DOC and DOCX.
//
//nolint:gochecknoglobals
var ResumeMIMETypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// IsResumeMIMEType reports whether mimeType is an accepted resume type.
func IsResumeMIMEType(mimeType string) bool {
	return slices.Contains(ResumeMIMETypes, mimeType)
}

// Application links a seeker to a job.
type Application struct {
	ID          string    `json:"_id"`
	Job         Ref[Job]  `json:"jobId"`
	Seeker      Ref[User] `json:"seekerId"`
	CoverLetter string    `json:"coverLetter,omitempty"`
	ResumeURL   string    `json:"resumeUrl,omitempty"`
	Status      Status    `json:"status"`
	AppliedAt   Timestamp `json:"appliedAt"`
}

// ApplicationDraft is a seeker's submission before it is sent.
type ApplicationDraft struct {
	JobID       string  `json:"jobId"`
	CoverLetter string  `json:"coverLetter" validate:"notblank,max=2000"`
	Resume      *Upload `json:"resume"`
}

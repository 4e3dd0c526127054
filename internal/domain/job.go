package domain

import (
	"net/url"
	"strings"
)

// Job is a posting as returned by the job endpoints.
type Job struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Skills       []string  `json:"skills"`
	Location     string    `json:"location"`
	Salary       Text      `json:"salary"`
	Company      string    `json:"company,omitempty"`
	Type         string    `json:"type,omitempty"`
	Requirements Text      `json:"requirements,omitempty"`
	Benefits     Text      `json:"benefits,omitempty"`
	Employer     Ref[User] `json:"employer"`
	CreatedAt    Timestamp `json:"createdAt"`
}

func (j Job) RefID() string {
	return j.ID
}

// JobSearch holds the seeker's search filters.
type JobSearch struct {
	Skills   []string
	Location string
}

// Empty reports whether no filter is set. Empty searches are not issued.
func (s JobSearch) Empty() bool {
	return len(NormalizeSkills(s.Skills)) == 0 && strings.TrimSpace(s.Location) == ""
}

// Query encodes the filters as skills=a,b&location=x, omitting empty filters.
func (s JobSearch) Query() url.Values {
	query := url.Values{}

	if skills := NormalizeSkills(s.Skills); len(skills) > 0 {
		query.Set("skills", strings.Join(skills, ","))
	}

	if location := strings.TrimSpace(s.Location); location != "" {
		query.Set("location", location)
	}

	return query
}

// JobPosting is the body of POST /api/jobs.
type JobPosting struct {
	Title       string   `json:"title"       validate:"notblank"`
	Description string   `json:"description" validate:"notblank"`
	Skills      []string `json:"skills"`
	Location    string   `json:"location"`
	Salary      string   `json:"salary"`
}

// Ready reports whether the posting can be submitted.
func (p JobPosting) Ready() bool {
	return strings.TrimSpace(p.Title) != "" && strings.TrimSpace(p.Description) != ""
}

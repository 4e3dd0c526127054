package domain

import (
	"strings"
)

// Role distinguishes job seekers from employers.
type Role string

const (
	RoleSeeker   Role = "seeker"
	RoleEmployer Role = "employer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleSeeker || r == RoleEmployer
}

// User is the authenticated account as returned by the profile endpoint.
type User struct {
	ID                 string    `json:"_id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Role               Role      `json:"role"`
	Skills             []string  `json:"skills,omitempty"`
	Company            string    `json:"company,omitempty"`
	Version            int       `json:"__v"`
	ProfileImage       string    `json:"profileImage,omitempty"`
	Verified           bool      `json:"verified,omitempty"`
	LastPasswordChange Timestamp `json:"lastPasswordChange"`
}

func (u User) RefID() string {
	return u.ID
}

// Initial returns the upper-cased first letter of the name for avatars.
func (u User) Initial() string {
	for _, r := range strings.TrimSpace(u.Name) {
		return strings.ToUpper(string(r))
	}

	return "U"
}

// Normalize keeps the profile subset the client relies on and drops anything
// role-specific that does not belong to the user's role.
func (u User) Normalize() User {
	out := User{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Role:               u.Role,
		Version:            u.Version,
		ProfileImage:       u.ProfileImage,
		Verified:           u.Verified,
		LastPasswordChange: u.LastPasswordChange,
	}

	switch u.Role {
	case RoleSeeker:
		out.Skills = append([]string(nil), u.Skills...)
	case RoleEmployer:
		out.Company = u.Company
	}

	return out
}

// ProfileResponse is the body of GET /api/auth/profile.
type ProfileResponse struct {
	User *User `json:"user"`
}

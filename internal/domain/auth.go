package domain

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the body of POST /api/auth/signup. Skills are only sent
// for seekers and Company only for employers.
type SignupRequest struct {
	Name     string   `json:"name"              validate:"min=2"`
	Email    string   `json:"email"             validate:"email"`
	Password string   `json:"password"          validate:"min=6"`
	Role     Role     `json:"role"              validate:"role"`
	Skills   []string `json:"skills,omitempty"`
	Company  string   `json:"company,omitempty"`
}

// Trim drops the fields that do not belong to the selected role.
func (req SignupRequest) Trim() SignupRequest {
	switch req.Role {
	case RoleSeeker:
		req.Company = ""
	case RoleEmployer:
		req.Skills = nil
	}

	return req
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Token   string `json:"token"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

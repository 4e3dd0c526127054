package authsvc

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/util/validation"
)

//nolint:gochecknoglobals
var (
	loginMessages = validation.Messages{
		"email":    "Email is required",
		"password": "Password is required",
	}

	signupMessages = validation.Messages{
		"name":     "Name must be at least 2 characters",
		"email":    "Invalid email address",
		"password": "Password must be at least 6 characters",
		"role":     "Please select a role",
		"skills":   "At least one skill is required for seekers",
		"company":  "Company name is required for employers",
	}
)

// NewValidator returns a validator that also enforces the role-specific
// signup fields: skills for seekers and a company for employers.
func NewValidator() *validator.Validate {
	validate := validation.New()

	if err := validate.RegisterValidation("role", validateRole); err != nil {
		panic(err)
	}

	validate.RegisterStructValidation(validateSignupRole, domain.SignupRequest{})

	return validate
}

func validateRole(fl validator.FieldLevel) bool {
	return domain.Role(fl.Field().String()).Valid()
}

func validateSignupRole(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(domain.SignupRequest)
	if !ok {
		return
	}

	switch req.Role {
	case domain.RoleSeeker:
		if len(domain.NormalizeSkills(req.Skills)) == 0 {
			sl.ReportError(req.Skills, "skills", "Skills", "required_for_seeker", "")
		}
	case domain.RoleEmployer:
		if strings.TrimSpace(req.Company) == "" {
			sl.ReportError(req.Company, "company", "Company", "required_for_employer", "")
		}
	}
}

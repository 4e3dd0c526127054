package domain

import "fmt"

// View is the role-specific projection of the session user. It is either a
// SeekerView or an EmployerView; pages switch on the concrete type.
type View interface {
	Role() Role
	Account() User

	view()
}

// SeekerView is the view of a job seeker.
type SeekerView struct {
	User   User
	Skills []string
}

// EmployerView is the view of an employer.
type EmployerView struct {
	User    User
	Company string
}

func (v SeekerView) Role() Role {
	return RoleSeeker
}

func (v SeekerView) Account() User {
	return v.User
}

func (SeekerView) view() {}

func (v EmployerView) Role() Role {
	return RoleEmployer
}

func (v EmployerView) Account() User {
	return v.User
}

func (EmployerView) view() {}

// ResolveView maps the user to its role view. Unknown roles fail with ErrUnknownRole.
func ResolveView(user User) (View, error) {
	switch user.Role {
	case RoleSeeker:
		return SeekerView{User: user, Skills: user.Skills}, nil
	case RoleEmployer:
		return EmployerView{User: user, Company: user.Company}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, user.Role)
	}
}

package web

import (
	"net/http"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/svc/authsvc"
)

type loginForm struct {
	Email  string
	Errors domain.ValidationErrors
}

type signupForm struct {
	Request domain.SignupRequest
	Catalog []string
	Errors  domain.ValidationErrors
}

func (h *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login.html", "Log in", loginForm{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return
	}

	req := domain.LoginRequest{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	form := loginForm{Email: req.Email}

	_, err := h.svc.Auth.Login(r.Context(), sessionID(r), req)
	if verrs, ok := domain.AsValidationErrors(err); ok {
		form.Errors = verrs
		h.render(w, r, http.StatusUnprocessableEntity, "login.html", "Log in", form)

		return
	}

	if err != nil {
		h.render(w, r, http.StatusOK, "login.html", "Log in", form,
			failure(apiclient.MessageOr(err, authsvc.MsgLoginFailed)))

		return
	}

	h.notifyAndRedirect(w, r, success(authsvc.MsgLoginSuccess), "/dashboard")
}

func (h *Handler) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	form := signupForm{
		Request: domain.SignupRequest{Role: domain.RoleSeeker}, //nolint:exhaustruct
		Catalog: domain.SkillsCatalog,
	}

	h.render(w, r, http.StatusOK, "signup.html", "Sign up", form)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return
	}

	req := domain.SignupRequest{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Role:     domain.Role(r.PostFormValue("role")),
		Skills:   r.PostForm["skills"],
		Company:  r.PostFormValue("company"),
	}

	form := signupForm{Request: req, Catalog: domain.SkillsCatalog}
	form.Request.Password = ""

	_, err := h.svc.Auth.Register(r.Context(), sessionID(r), req)
	if verrs, ok := domain.AsValidationErrors(err); ok {
		form.Errors = verrs
		h.render(w, r, http.StatusUnprocessableEntity, "signup.html", "Sign up", form)

		return
	}

	if err != nil {
		h.render(w, r, http.StatusOK, "signup.html", "Sign up", form,
			failure(apiclient.MessageOr(err, authsvc.MsgSignupFailed)))

		return
	}

	h.notifyAndRedirect(w, r, success(authsvc.MsgSignupSuccess), "/dashboard")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Auth.Logout(r.Context(), sessionID(r)); err != nil {
		h.log.ErrorContext(r.Context(), "logout failed", "error", err)
	}

	redirect(w, r, "/login")
}

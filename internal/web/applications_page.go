package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/svc/applicationsvc"
	"github.com/mkrupp/skillsphere/internal/svc/messagesvc"
)

type applicationsPage struct {
	State        string
	Error        string
	Applications []domain.Application
	// Selected is the application whose job details are shown.
	Selected *domain.Application
	// Recruit is the application whose message composer is open.
	Recruit string
	Draft   string
	Apply   *applyForm
}

type applyForm struct {
	JobID       string
	CoverLetter string
	MaxLength   int
	Errors      domain.ValidationErrors
}

func newApplyForm(jobID, coverLetter string) *applyForm {
	return &applyForm{JobID: jobID, CoverLetter: coverLetter, MaxLength: domain.MaxCoverLetterLength}
}

func applicationsURL(param, value string) string {
	if value == "" {
		return "/applications"
	}

	return "/applications?" + url.Values{param: {value}}.Encode()
}

func findApplication(apps []domain.Application, id string) *domain.Application {
	for i := range apps {
		if apps[i].ID == id {
			return &apps[i]
		}
	}

	return nil
}

// listApplications loads the viewer's applications: their own for seekers,
// those received for employers.
func (h *Handler) listApplications(r *http.Request, view domain.View) ([]domain.Application, error) {
	if view.Role() == domain.RoleEmployer {
		return h.svc.Applications.ForEmployer(r.Context(), sessionID(r)) //nolint:wrapcheck
	}

	return h.svc.Applications.Mine(r.Context(), sessionID(r)) //nolint:wrapcheck
}

func (h *Handler) handleApplications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	h.renderApplications(w, r, query.Get("recruit"), "", http.StatusOK)
}

// renderApplications renders the applications page for the viewer. recruit
// and draft restore an open message composer.
func (h *Handler) renderApplications(
	w http.ResponseWriter,
	r *http.Request,
	recruit, draft string,
	status int,
	flashes ...domain.Flash,
) {
	view, err := h.viewer(r)
	if signedOut(err) {
		outcome := applicationsvc.ListOutcome(err)
		h.notifyAndRedirect(w, r, failure(outcome.Message), outcome.Redirect)

		return
	}

	page := applicationsPage{State: dashboardState(view, err)}

	if err != nil {
		if page.State != stateForbidden {
			page.Error = apiclient.MessageOr(err, applicationsvc.MsgFetchFailed)
		}

		h.render(w, r, http.StatusOK, "applications.html", "Applications", page, flashes...)

		return
	}

	query := r.URL.Query()

	if jobID := query.Get("job"); jobID != "" && page.State == stateSeeker {
		page.Apply = newApplyForm(jobID, "")
		h.render(w, r, status, "applications.html", "Apply", page, flashes...)

		return
	}

	apps, err := h.listApplications(r, view)
	if err != nil {
		outcome := applicationsvc.ListOutcome(err)
		if outcome.Redirect != "" {
			h.notifyAndRedirect(w, r, failure(outcome.Message), outcome.Redirect)

			return
		}

		page.Error = outcome.Message
		h.render(w, r, http.StatusOK, "applications.html", "Applications", page, flashes...)

		return
	}

	page.Applications = apps

	if page.State == stateSeeker {
		page.Selected = findApplication(apps, query.Get("view"))
	} else if findApplication(apps, recruit) != nil {
		page.Recruit = recruit
		page.Draft = draft
	}

	h.render(w, r, status, "applications.html", "Applications", page, flashes...)
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	view, err := h.viewer(r)
	if signedOut(err) {
		outcome := applicationsvc.ApplyOutcome(err)
		h.notifyAndRedirect(w, r, failure(outcome.Message), outcome.Redirect)

		return
	}

	if err != nil || view.Role() != domain.RoleSeeker {
		h.render(w, r, http.StatusForbidden, "applications.html", "Applications",
			applicationsPage{State: stateForbidden})

		return
	}

	page := applicationsPage{State: stateSeeker}

	if err := h.parseMultipart(w, r, h.cfg.MaxUploadSize); err != nil {
		if !errors.Is(err, domain.ErrUploadTooLarge) {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

			return
		}

		page.Apply = newApplyForm(r.URL.Query().Get("job"), "")
		page.Apply.Errors = domain.ValidationErrors{"resume": applicationsvc.MsgResumeTooLarge}
		h.render(w, r, http.StatusRequestEntityTooLarge, "applications.html", "Apply", page)

		return
	}

	resume, err := formUpload(r, "resume")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return
	}

	draft := domain.ApplicationDraft{
		JobID:       r.FormValue("jobId"),
		CoverLetter: r.FormValue("coverLetter"),
		Resume:      resume,
	}
	page.Apply = newApplyForm(draft.JobID, draft.CoverLetter)

	err = h.svc.Applications.Apply(r.Context(), sessionID(r), draft)
	if verrs, ok := domain.AsValidationErrors(err); ok {
		page.Apply.Errors = verrs
		h.render(w, r, http.StatusUnprocessableEntity, "applications.html", "Apply", page)

		return
	}

	outcome := applicationsvc.ApplyOutcome(err)

	switch {
	case err == nil:
		h.notifyAndRedirect(w, r, success(outcome.Message), outcome.Redirect)
	case outcome.Redirect != "":
		h.notifyAndRedirect(w, r, failure(outcome.Message), outcome.Redirect)
	default:
		h.render(w, r, http.StatusOK, "applications.html", "Apply", page, failure(outcome.Message))
	}
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return
	}

	appID := r.PostFormValue("applicationId")
	req := domain.SendMessageRequest{
		ReceiverID: r.PostFormValue("receiverId"),
		JobID:      r.PostFormValue("jobId"),
		Message:    r.PostFormValue("message"),
	}

	err := h.svc.Messages.Send(r.Context(), sessionID(r), req)
	if verrs, ok := domain.AsValidationErrors(err); ok {
		h.notifyAndRedirect(w, r, failure(verrs["message"]), applicationsURL("recruit", appID))

		return
	}

	switch {
	case err == nil:
		h.notifyAndRedirect(w, r, success(messagesvc.MsgSent), "/applications")
	case signedOut(err):
		h.notifyAndRedirect(w, r, failure(apiclient.MessageOr(err, messagesvc.MsgSendFailed)), "/login")
	default:
		h.renderApplications(w, r, appID, req.Message, http.StatusOK,
			failure(apiclient.MessageOr(err, messagesvc.MsgSendFailed)))
	}
}

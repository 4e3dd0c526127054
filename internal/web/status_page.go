package web

import (
	"net/http"
	"strings"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/svc/applicationsvc"
)

type statusPage struct {
	State        string
	Error        string
	Query        string
	Total        int
	Applications []domain.Application
	Selected     *domain.Application
	Messages     []domain.Message
}

// matchApplication reports whether the job title, company or status contains q.
func matchApplication(app domain.Application, q string) bool {
	if q == "" {
		return true
	}

	job := app.Job.Get()
	q = strings.ToLower(q)

	for _, field := range []string{job.Title, job.Company, string(app.Status.Normalized())} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}

	return false
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	view, err := h.viewer(r)
	if signedOut(err) {
		outcome := applicationsvc.ListOutcome(err)
		h.notifyAndRedirect(w, r, failure(outcome.Message), outcome.Redirect)

		return
	}

	page := statusPage{State: dashboardState(view, err)}

	if err != nil || page.State != stateSeeker {
		if err != nil && page.State != stateForbidden {
			page.Error = apiclient.MessageOr(err, applicationsvc.MsgFetchFailed)
		}

		h.render(w, r, http.StatusOK, "status.html", "Status", page)

		return
	}

	ctx := r.Context()
	query := r.URL.Query()
	page.Query = strings.TrimSpace(query.Get("q"))

	apps, err := h.svc.Applications.Mine(ctx, sessionID(r))
	if err != nil {
		outcome := applicationsvc.ListOutcome(err)
		if outcome.Redirect != "" {
			h.notifyAndRedirect(w, r, failure(outcome.Message), outcome.Redirect)

			return
		}

		page.Error = outcome.Message
		h.render(w, r, http.StatusOK, "status.html", "Status", page)

		return
	}

	page.Total = len(apps)

	for _, app := range apps {
		if matchApplication(app, page.Query) {
			page.Applications = append(page.Applications, app)
		}
	}

	page.Selected = findApplication(apps, query.Get("app"))
	if page.Selected != nil {
		messages, err := h.svc.Messages.Thread(ctx, sessionID(r), view.Account().ID, page.Selected.Job.ID)
		if err != nil {
			h.log.ErrorContext(ctx, "fetch messages failed", "application", page.Selected.ID, "error", err)
		}

		page.Messages = messages
	}

	h.render(w, r, http.StatusOK, "status.html", "Status", page)
}

package web

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/svc/jobsvc"
)

// Dashboard states.
const (
	stateSignIn    = "signin"
	stateForbidden = "forbidden"
	stateSeeker    = "seeker"
	stateEmployer  = "employer"
)

type dashboardPage struct {
	State   string
	Catalog []string
	Search  searchForm
	Posting postingForm
}

type searchForm struct {
	Skills   []string
	Location string
	Searched bool
	Jobs     []domain.Job
}

// Ready reports whether the search button is enabled.
func (f searchForm) Ready() bool {
	return !f.search().Empty()
}

func (f searchForm) search() domain.JobSearch {
	return domain.JobSearch{Skills: f.Skills, Location: f.Location}
}

type postingForm struct {
	Posting     domain.JobPosting
	CustomSkill string
	Errors      domain.ValidationErrors
}

// dashboardState maps the viewer to the dashboard variant.
func dashboardState(view domain.View, err error) string {
	switch {
	case err == nil && view.Role() == domain.RoleSeeker:
		return stateSeeker
	case err == nil && view.Role() == domain.RoleEmployer:
		return stateEmployer
	case errors.Is(err, domain.ErrUnknownRole):
		return stateForbidden
	default:
		return stateSignIn
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.viewer(r)

	page := dashboardPage{
		State:   dashboardState(view, err),
		Catalog: domain.SkillsCatalog,
	}

	if page.State != stateSeeker {
		h.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", page)

		return
	}

	query := r.URL.Query()

	skills := domain.NormalizeSkills(append(query["skills"], query.Get("add")))
	if remove := query.Get("remove"); remove != "" {
		skills = slices.DeleteFunc(skills, func(s string) bool { return strings.EqualFold(s, remove) })
	}

	page.Search = searchForm{Skills: skills, Location: strings.TrimSpace(query.Get("location"))}

	if query.Get("action") != "search" {
		h.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", page)

		return
	}

	jobs, err := h.svc.Jobs.Search(r.Context(), page.Search.search())

	switch {
	case errors.Is(err, jobsvc.ErrEmptySearch):
		h.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", page)
	case err != nil:
		page.Search.Searched = true
		h.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", page, failure(jobsvc.MsgSearchFailed))
	default:
		page.Search.Searched = true
		page.Search.Jobs = jobs
		h.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", page, success(jobsvc.MsgFound(len(jobs))))
	}
}

func (h *Handler) handlePostJob(w http.ResponseWriter, r *http.Request) {
	view, err := h.viewer(r)
	if signedOut(err) {
		redirect(w, r, "/login")

		return
	}

	page := dashboardPage{
		State:   dashboardState(view, err),
		Catalog: domain.SkillsCatalog,
	}

	if page.State != stateEmployer {
		h.render(w, r, http.StatusForbidden, "dashboard.html", "Dashboard", page)

		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return
	}

	custom := r.PostFormValue("customSkill")
	posting := domain.JobPosting{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Skills:      append(r.PostForm["skills"], strings.Split(custom, ",")...),
		Location:    r.PostFormValue("location"),
		Salary:      r.PostFormValue("salary"),
	}

	page.Posting = postingForm{Posting: posting, CustomSkill: custom}
	page.Posting.Posting.Skills = domain.NormalizeSkills(r.PostForm["skills"])

	_, err = h.svc.Jobs.Post(r.Context(), sessionID(r), posting)
	if verrs, ok := domain.AsValidationErrors(err); ok {
		page.Posting.Errors = verrs
		h.render(w, r, http.StatusUnprocessableEntity, "dashboard.html", "Dashboard", page)

		return
	}

	if err != nil {
		h.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", page,
			failure(apiclient.MessageOr(err, jobsvc.MsgPostFailed)))

		return
	}

	h.notifyAndRedirect(w, r, success(jobsvc.MsgPostSuccess), "/dashboard")
}

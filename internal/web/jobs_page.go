package web

import (
	"net/http"

	"github.com/mkrupp/skillsphere/internal/domain"
)

type jobsPage struct {
	Jobs []domain.Job
}

func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.Jobs.All(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "list jobs failed", "error", err)

		jobs = nil
	}

	h.render(w, r, http.StatusOK, "jobs.html", "Jobs", jobsPage{Jobs: jobs})
}

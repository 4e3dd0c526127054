package web

import (
	"net/http"

	"github.com/mkrupp/skillsphere/internal/domain"
)

func success(msg string) domain.Flash {
	return domain.Flash{Kind: domain.FlashSuccess, Message: msg}
}

func failure(msg string) domain.Flash {
	return domain.Flash{Kind: domain.FlashError, Message: msg}
}

// notify queues a toast for the next page the session renders.
func (h *Handler) notify(r *http.Request, flash domain.Flash) {
	if err := h.svc.Flashes.PushFlash(r.Context(), sessionID(r), flash); err != nil {
		h.log.WarnContext(r.Context(), "push flash failed", "kind", flash.Kind, "error", err)
	}
}

// notifyAndRedirect queues a toast and continues on another page.
func (h *Handler) notifyAndRedirect(w http.ResponseWriter, r *http.Request, flash domain.Flash, to string) {
	h.notify(r, flash)
	redirect(w, r, to)
}

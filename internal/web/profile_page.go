package web

import (
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
	"github.com/mkrupp/skillsphere/internal/svc/profilesvc"
	"github.com/mkrupp/skillsphere/internal/util/encoding"
)

// Profile page states.
const (
	stateProfile = "profile"
	stateNoUser  = "nouser"
	stateError   = "error"
)

type profilePage struct {
	State   string
	Error   string
	User    domain.User
	Edit    bool
	Name    string
	Preview *profilesvc.Preview
	Errors  domain.ValidationErrors
}

func profileEditURL(name string, draftID domain.DraftID) string {
	query := url.Values{"edit": {"1"}}
	if name != "" {
		query.Set("name", name)
	}

	if draftID != "" {
		query.Set("draft", string(draftID))
	}

	return "/profile?" + query.Encode()
}

// loadProfile resolves the viewer for the profile page. ok is false if the
// page was rendered because no profile is available.
func (h *Handler) loadProfile(w http.ResponseWriter, r *http.Request) (profilePage, bool) {
	view, err := h.viewer(r)

	switch {
	case err == nil:
		return profilePage{State: stateProfile, User: view.Account()}, true
	case errors.Is(err, domain.ErrNoToken):
		h.render(w, r, http.StatusOK, "profile.html", "Profile", profilePage{State: stateNoUser})
	default:
		page := profilePage{
			State: stateError,
			Error: apiclient.MessageOr(err, profilesvc.MsgLoadFailed),
		}
		h.render(w, r, http.StatusOK, "profile.html", "Profile", page)
	}

	return profilePage{}, false
}

// withPreview attaches the staged image of the session, if it is still there.
func (h *Handler) withPreview(r *http.Request, page *profilePage, draftID domain.DraftID) {
	if draftID == "" {
		return
	}

	preview, err := h.svc.Profiles.Preview(r.Context(), draftID)
	if err != nil {
		h.log.WarnContext(r.Context(), "draft preview failed", "draft", draftID, "error", err)

		return
	}

	page.Preview = &preview
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	page, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()

	page.Edit = query.Get("edit") == "1"
	page.Name = page.User.Name

	if page.Edit {
		if name := query.Get("name"); name != "" {
			page.Name = name
		}

		h.withPreview(r, &page, domain.DraftID(query.Get("draft")))
	}

	h.render(w, r, http.StatusOK, "profile.html", "Profile", page)
}

func (h *Handler) handleStageImage(w http.ResponseWriter, r *http.Request) {
	page, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	page.Edit = true

	if err := h.parseMultipart(w, r, h.imageLimit()); err != nil {
		if !errors.Is(err, domain.ErrUploadTooLarge) {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

			return
		}

		page.Name = page.User.Name
		page.Errors = domain.ValidationErrors{"image": profilesvc.MsgImageTooLarge}
		h.render(w, r, http.StatusRequestEntityTooLarge, "profile.html", "Profile", page)

		return
	}

	page.Name = r.FormValue("name")
	previous := domain.DraftID(r.FormValue("draftId"))

	upload, err := formUpload(r, "image")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return
	}

	if upload == nil {
		page.Errors = domain.ValidationErrors{"image": profilesvc.MsgImageType}
		h.withPreview(r, &page, previous)
		h.render(w, r, http.StatusUnprocessableEntity, "profile.html", "Profile", page)

		return
	}

	preview, err := h.svc.Profiles.StageImage(r.Context(), *upload)
	if verrs, ok := domain.AsValidationErrors(err); ok {
		page.Errors = verrs
		h.withPreview(r, &page, previous)
		h.render(w, r, http.StatusUnprocessableEntity, "profile.html", "Profile", page)

		return
	}

	if err != nil {
		h.withPreview(r, &page, previous)
		h.render(w, r, http.StatusOK, "profile.html", "Profile", page,
			failure(apiclient.MessageOr(err, profilesvc.MsgUpdateFailed)))

		return
	}

	if previous != "" && previous != preview.Meta.ID {
		if err := h.svc.Profiles.Discard(r.Context(), previous); err != nil {
			h.log.WarnContext(r.Context(), "discard replaced draft failed", "draft", previous, "error", err)
		}
	}

	redirect(w, r, profileEditURL(page.Name, preview.Meta.ID))
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	page, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	page.Edit = true

	if err := h.parseMultipart(w, r, h.imageLimit()); err != nil {
		if !errors.Is(err, domain.ErrUploadTooLarge) {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

			return
		}

		page.Name = page.User.Name
		page.Errors = domain.ValidationErrors{"image": profilesvc.MsgImageTooLarge}
		h.render(w, r, http.StatusRequestEntityTooLarge, "profile.html", "Profile", page)

		return
	}

	image, err := formUpload(r, "image")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return
	}

	edit := profilesvc.Edit{
		Name:    r.FormValue("name"),
		DraftID: domain.DraftID(r.FormValue("draftId")),
		Image:   image,
	}
	page.Name = edit.Name

	_, changed, err := h.svc.Profiles.Update(r.Context(), sessionID(r), edit)
	if verrs, ok := domain.AsValidationErrors(err); ok {
		page.Errors = verrs
		h.withPreview(r, &page, edit.DraftID)
		h.render(w, r, http.StatusUnprocessableEntity, "profile.html", "Profile", page)

		return
	}

	switch {
	case err != nil:
		h.withPreview(r, &page, edit.DraftID)
		h.render(w, r, http.StatusOK, "profile.html", "Profile", page,
			failure(apiclient.MessageOr(err, profilesvc.MsgUpdateFailed)))
	case changed:
		h.notifyAndRedirect(w, r, success(profilesvc.MsgUpdated), "/profile")
	default:
		redirect(w, r, "/profile")
	}
}

func (h *Handler) handleDiscardImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return
	}

	draftID := domain.DraftID(r.PostFormValue("draftId"))
	if err := h.svc.Profiles.Discard(r.Context(), draftID); err != nil {
		h.log.WarnContext(r.Context(), "discard draft failed", "draft", draftID, "error", err)
	}

	redirect(w, r, "/profile")
}

// handleDraftImage serves a staged image of the session.
func (h *Handler) handleDraftImage(w http.ResponseWriter, r *http.Request) {
	_ = h.handleDraft(w, r)
}

func (h *Handler) handleDraft(w http.ResponseWriter, r *http.Request) (err error) {
	log := h.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func() {
		if err != nil {
			log.ErrorContext(r.Context(), "draft download failed", "error", err)
		} else {
			log.DebugContext(r.Context(), "draft downloaded")
		}
	}()

	draftID := encoding.NormalizeCrockfordB32LC(chi.URLParam(r, paramDraftID))
	if len(draftID) <= len(sessionID(r)) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)

		return domain.ErrNoDraftID
	}

	upload, err := h.svc.Drafts.Fetch(r.Context(), domain.DraftID(draftID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			fallthrough
		case errors.Is(err, fs.ErrNotExist):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		default:
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return err //nolint:wrapcheck
	}

	w.Header().Set("Content-Type", upload.MIMEType())
	w.Header().Set("Content-Length", strconv.FormatInt(upload.Size(), 10))
	w.Header().Set("Cache-Control", "private, no-store")

	if _, err := w.Write(upload.Bytes()); err != nil {
		return err //nolint:wrapcheck
	}

	return nil
}

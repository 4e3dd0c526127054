package web_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/domain"
	http_ "github.com/mkrupp/skillsphere/internal/infra/transport/http"
	"github.com/mkrupp/skillsphere/internal/svc/applicationsvc"
	"github.com/mkrupp/skillsphere/internal/svc/messagesvc"
	"github.com/mkrupp/skillsphere/internal/svc/profilesvc"
)

type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatal(err)
		}
	}

	for _, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.filename))
		header.Set("Content-Type", file.contentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatal(err)
		}

		if _, err := part.Write(file.data); err != nil {
			t.Fatal(err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req
}

func resume(size int) filePart {
	return filePart{
		field:       "resume",
		filename:    "cv.pdf",
		contentType: "application/pdf",
		data:        append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("x"), size)...),
	}
}

func pngImage(size int) filePart {
	return filePart{
		field:       "image",
		filename:    "avatar.png",
		contentType: "image/png",
		data:        append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, size)...),
	}
}

func application(id, title, company string) domain.Application {
	//nolint:exhaustruct
	return domain.Application{
		ID:     id,
		Job:    domain.Ref[domain.Job]{ID: "j-" + id, Value: &domain.Job{ID: "j-" + id, Title: title, Company: company}},
		Seeker: domain.Ref[domain.User]{ID: "s1", Value: &domain.User{ID: "s1", Name: "sam", Email: "sam@example.com"}},
		Status: domain.StatusPending,
	}
}

func assertBody(t *testing.T, body string, want, wantNot []string) {
	t.Helper()

	for _, s := range want {
		if !strings.Contains(body, s) {
			t.Errorf("body does not contain %q", s)
		}
	}

	for _, s := range wantNot {
		if strings.Contains(body, s) {
			t.Errorf("body contains %q", s)
		}
	}
}

func assertFlash(t *testing.T, flashes []domain.Flash, kind domain.FlashKind, msg string) {
	t.Helper()

	if len(flashes) != 1 || flashes[0].Kind != kind || flashes[0].Message != msg {
		t.Errorf("flashes = %v, want one %s %q", flashes, kind, msg)
	}
}

func TestViewerResolvedOncePerRequest(t *testing.T) {
	t.Parallel()

	for _, target := range []string{"/dashboard", "/profile", "/applications", "/status"} {
		t.Run(target, func(t *testing.T) {
			t.Parallel()

			f := setupHandler(t, seeker())
			f.sessions.currentErr = &apiclient.Error{Status: http.StatusInternalServerError, Message: "Database down"}

			rec := f.serve(f.signIn(t), httptest.NewRequest(http.MethodGet, target, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("GET %s = %d, want 200", target, rec.Code)
			}

			if got := f.sessions.currents.Load(); got != 1 {
				t.Errorf("profile resolved %d times, want 1", got)
			}
		})
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	const coverLetter = "I have shipped Go services for years."

	tests := []struct {
		name         string
		signedIn     bool
		applyErr     error
		files        []filePart
		wantStatus   int
		wantLocation string
		wantFlash    *domain.Flash
		wantBody     []string
		wantApplied  int
	}{
		{
			name:         "anonymous",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/login",
			wantFlash:    &domain.Flash{Kind: domain.FlashError, Message: applicationsvc.MsgLoginToApply},
		},
		{
			name:         "submitted",
			signedIn:     true,
			files:        []filePart{resume(64)},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/jobs",
			wantFlash:    &domain.Flash{Kind: domain.FlashSuccess, Message: applicationsvc.MsgApplySuccess},
			wantApplied:  1,
		},
		{
			name:     "inline field errors",
			signedIn: true,
			applyErr: domain.ValidationErrors{
				"coverLetter": applicationsvc.MsgCoverLetterRequired,
				"resume":      applicationsvc.MsgResumeRequired,
			},
			wantStatus:  http.StatusUnprocessableEntity,
			wantBody:    []string{applicationsvc.MsgCoverLetterRequired, applicationsvc.MsgResumeRequired},
			wantApplied: 1,
		},
		{
			name:         "token rejected",
			signedIn:     true,
			applyErr:     &apiclient.Error{Status: http.StatusUnauthorized},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/login",
			wantFlash:    &domain.Flash{Kind: domain.FlashError, Message: applicationsvc.MsgLoginToApply},
			wantApplied:  1,
		},
		{
			name:         "job gone",
			signedIn:     true,
			applyErr:     &apiclient.Error{Status: http.StatusNotFound},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/jobs",
			wantFlash:    &domain.Flash{Kind: domain.FlashError, Message: applicationsvc.MsgJobNotFound},
			wantApplied:  1,
		},
		{
			name:        "already applied keeps the form",
			signedIn:    true,
			applyErr:    &apiclient.Error{Status: http.StatusConflict},
			wantStatus:  http.StatusOK,
			wantBody:    []string{applicationsvc.MsgAlreadyApplied, coverLetter, `name="jobId" value="j1"`},
			wantApplied: 1,
		},
		{
			name:        "upload over the request limit",
			signedIn:    true,
			files:       []filePart{resume(2 << 20)},
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantBody:    []string{applicationsvc.MsgResumeTooLarge},
			wantApplied: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setupHandler(t, seeker())
			f.applications.applyErr = tt.applyErr

			sessionID := http_.NewID()
			if tt.signedIn {
				sessionID = f.signIn(t)
			}

			req := multipartRequest(t, "/applications/apply?job=j1",
				map[string]string{"jobId": "j1", "coverLetter": coverLetter}, tt.files...)

			rec := f.serve(sessionID, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("POST /applications/apply = %d, want %d", rec.Code, tt.wantStatus)
			}

			if got := rec.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}

			if tt.wantFlash != nil {
				assertFlash(t, f.popFlashes(sessionID), tt.wantFlash.Kind, tt.wantFlash.Message)
			}

			assertBody(t, rec.Body.String(), tt.wantBody, nil)

			if len(f.applications.applied) != tt.wantApplied {
				t.Fatalf("applied %d times, want %d", len(f.applications.applied), tt.wantApplied)
			}

			if tt.wantApplied > 0 {
				draft := f.applications.applied[0]
				if draft.JobID != "j1" || draft.CoverLetter != coverLetter {
					t.Errorf("draft = %+v", draft)
				}

				if len(tt.files) > 0 && (draft.Resume == nil || draft.Resume.Owner() != sessionID) {
					t.Errorf("resume not owned by the session: %+v", draft.Resume)
				}
			}
		})
	}
}

func TestApplicationDetails(t *testing.T) {
	t.Parallel()

	unpopulated := application("a1", "", "")
	unpopulated.Job = domain.Ref[domain.Job]{ID: "j9"} //nolint:exhaustruct

	tests := []struct {
		name    string
		app     domain.Application
		want    []string
		wantNot []string
	}{
		{
			name:    "populated job",
			app:     application("a1", "Gopher", "Acme"),
			want:    []string{"Job Details", "Posted on:"},
			wantNot: []string{"Job details are not available."},
		},
		{
			name:    "job not populated",
			app:     unpopulated,
			want:    []string{"Job details are not available."},
			wantNot: []string{"Posted on:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setupHandler(t, seeker())
			f.applications.apps = []domain.Application{tt.app}

			rec := f.serve(f.signIn(t), httptest.NewRequest(http.MethodGet, "/applications?view=a1", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("GET /applications = %d, want 200", rec.Code)
			}

			assertBody(t, rec.Body.String(), tt.want, tt.wantNot)
		})
	}
}

func TestSendMessage(t *testing.T) {
	t.Parallel()

	const draft = "We would like to meet you"

	tests := []struct {
		name         string
		sendErr      error
		wantStatus   int
		wantLocation string
		wantFlash    *domain.Flash
		wantBody     []string
	}{
		{
			name:         "sent",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/applications",
			wantFlash:    &domain.Flash{Kind: domain.FlashSuccess, Message: messagesvc.MsgSent},
		},
		{
			name:         "empty message",
			sendErr:      domain.ValidationErrors{"message": messagesvc.MsgRequired},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/applications?recruit=a1",
			wantFlash:    &domain.Flash{Kind: domain.FlashError, Message: messagesvc.MsgRequired},
		},
		{
			name:         "token rejected",
			sendErr:      &apiclient.Error{Status: http.StatusUnauthorized},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/login",
			wantFlash:    &domain.Flash{Kind: domain.FlashError, Message: messagesvc.MsgSendFailed},
		},
		{
			name:       "failed send restores the composer",
			sendErr:    &apiclient.Error{Status: http.StatusInternalServerError, Message: "Database down"},
			wantStatus: http.StatusOK,
			wantBody:   []string{"Database down", draft, `name="receiverId" value="s1"`, "Send Message"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setupHandler(t, employer())
			f.applications.apps = []domain.Application{application("a1", "Gopher", "Acme")}
			f.messages.sendErr = tt.sendErr
			sessionID := f.signIn(t)

			rec := f.serve(sessionID, formRequest("/applications/messages", url.Values{
				"applicationId": {"a1"},
				"receiverId":    {"s1"},
				"jobId":         {"j-a1"},
				"message":       {draft},
			}))
			if rec.Code != tt.wantStatus {
				t.Fatalf("POST /applications/messages = %d, want %d", rec.Code, tt.wantStatus)
			}

			if got := rec.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}

			if tt.wantFlash != nil {
				assertFlash(t, f.popFlashes(sessionID), tt.wantFlash.Kind, tt.wantFlash.Message)
			}

			assertBody(t, rec.Body.String(), tt.wantBody, nil)

			want := domain.SendMessageRequest{ReceiverID: "s1", JobID: "j-a1", Message: draft}
			if len(f.messages.sent) != 1 || f.messages.sent[0] != want {
				t.Errorf("sent = %+v, want %+v", f.messages.sent, want)
			}
		})
	}
}

func TestStatusPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		target      string
		want        []string
		wantNot     []string
		wantThreads int
	}{
		{
			name:   "lists all applications",
			target: "/status",
			want:   []string{"Gopher", "Baker", "Select an application"},
		},
		{
			name:    "filters by company",
			target:  "/status?q=acme",
			want:    []string{"Gopher"},
			wantNot: []string{"Baker"},
		},
		{
			name:        "selected application shows its thread",
			target:      "/status?app=a1",
			want:        []string{"See you Monday", "1 message"},
			wantThreads: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setupHandler(t, seeker())
			f.applications.apps = []domain.Application{
				application("a1", "Gopher", "Acme"),
				application("a2", "Baker", "Bakery"),
			}
			f.messages.thread = []domain.Message{{ID: "m1", Message: "See you Monday"}} //nolint:exhaustruct

			rec := f.serve(f.signIn(t), httptest.NewRequest(http.MethodGet, tt.target, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("GET %s = %d, want 200", tt.target, rec.Code)
			}

			assertBody(t, rec.Body.String(), tt.want, tt.wantNot)

			if len(f.messages.threads) != tt.wantThreads {
				t.Fatalf("threads fetched = %d, want %d", len(f.messages.threads), tt.wantThreads)
			}

			if tt.wantThreads > 0 && f.messages.threads[0] != [2]string{"u1", "j-a1"} {
				t.Errorf("thread = %v, want [u1 j-a1]", f.messages.threads[0])
			}
		})
	}
}

func TestStatusRequiresLogin(t *testing.T) {
	t.Parallel()

	f := setupHandler(t, seeker())
	sessionID := http_.NewID()

	rec := f.serve(sessionID, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("GET /status = %d %q, want 303 /login", rec.Code, rec.Header().Get("Location"))
	}

	assertFlash(t, f.popFlashes(sessionID), domain.FlashError, applicationsvc.MsgAuthRequired)
}

func TestProfilePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		signedIn     bool
		currentErr   error
		target       string
		want         []string
		wantPreviews int
	}{
		{
			name:   "anonymous",
			target: "/profile",
			want:   []string{"No User Data"},
		},
		{
			name:     "signed in",
			signedIn: true,
			target:   "/profile",
			want:     []string{"ada@example.com", "Edit Profile"},
		},
		{
			name:         "edit restores the staged image",
			signedIn:     true,
			target:       "/profile?edit=1&name=Ada+L&draft=d1",
			want:         []string{`name="draftId" value="d1"`, `value="Ada L"`, "staged.png"},
			wantPreviews: 1,
		},
		{
			name:       "profile unavailable",
			signedIn:   true,
			currentErr: &apiclient.Error{Status: http.StatusInternalServerError, Message: "Database down"},
			target:     "/profile",
			want:       []string{"Error Loading Profile", "Database down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setupHandler(t, seeker())
			f.sessions.currentErr = tt.currentErr

			sessionID := http_.NewID()
			if tt.signedIn {
				sessionID = f.signIn(t)
			}

			rec := f.serve(sessionID, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("GET %s = %d, want 200", tt.target, rec.Code)
			}

			assertBody(t, rec.Body.String(), tt.want, nil)

			if len(f.profiles.previews) != tt.wantPreviews {
				t.Errorf("previews = %v, want %d", f.profiles.previews, tt.wantPreviews)
			}
		})
	}
}

func TestStageImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		files         []filePart
		stageErr      error
		wantStatus    int
		wantBody      []string
		wantStaged    int
		wantDiscarded []domain.DraftID
	}{
		{
			name:          "staged replaces the previous draft",
			files:         []filePart{pngImage(16)},
			wantStatus:    http.StatusSeeOther,
			wantStaged:    1,
			wantDiscarded: []domain.DraftID{"previous"},
		},
		{
			name:       "no file chosen",
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   []string{profilesvc.MsgImageType},
		},
		{
			name:       "rejected image",
			files:      []filePart{pngImage(16)},
			stageErr:   domain.ValidationErrors{"image": profilesvc.MsgImageType},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   []string{profilesvc.MsgImageType},
			wantStaged: 1,
		},
		{
			name:       "larger than a draft",
			files:      []filePart{pngImage(128 << 10)},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantBody:   []string{profilesvc.MsgImageTooLarge},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setupHandler(t, seeker())
			f.profiles.stageErr = tt.stageErr
			sessionID := f.signIn(t)

			req := multipartRequest(t, "/profile/image", map[string]string{"name": "Ada L", "draftId": "previous"}, tt.files...)

			rec := f.serve(sessionID, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("POST /profile/image = %d, want %d", rec.Code, tt.wantStatus)
			}

			assertBody(t, rec.Body.String(), tt.wantBody, nil)

			if len(f.profiles.staged) != tt.wantStaged {
				t.Fatalf("staged %d images, want %d", len(f.profiles.staged), tt.wantStaged)
			}

			if fmt.Sprint(f.profiles.discarded) != fmt.Sprint(tt.wantDiscarded) {
				t.Errorf("discarded = %v, want %v", f.profiles.discarded, tt.wantDiscarded)
			}

			if tt.wantStatus != http.StatusSeeOther {
				return
			}

			staged := f.profiles.staged[0]
			if staged.Owner() != sessionID || staged.MIMEType() != "image/png" {
				t.Errorf("staged upload %+v", staged.Meta())
			}

			want := "/profile?" + url.Values{"edit": {"1"}, "name": {"Ada L"}, "draft": {string(staged.ID())}}.Encode()
			if got := rec.Header().Get("Location"); got != want {
				t.Errorf("Location = %q, want %q", got, want)
			}
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		changed      bool
		updateErr    error
		wantStatus   int
		wantLocation string
		wantFlash    *domain.Flash
		wantBody     []string
	}{
		{
			name:         "changed",
			changed:      true,
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/profile",
			wantFlash:    &domain.Flash{Kind: domain.FlashSuccess, Message: profilesvc.MsgUpdated},
		},
		{
			name:         "nothing changed",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/profile",
		},
		{
			name:       "blank name",
			updateErr:  domain.ValidationErrors{"name": profilesvc.MsgNameRequired},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   []string{profilesvc.MsgNameRequired, `name="draftId" value="d1"`},
		},
		{
			name:       "backend failure",
			updateErr:  &apiclient.Error{Status: http.StatusInternalServerError},
			wantStatus: http.StatusOK,
			wantBody:   []string{profilesvc.MsgUpdateFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setupHandler(t, seeker())
			f.profiles.changed = tt.changed
			f.profiles.updateErr = tt.updateErr
			sessionID := f.signIn(t)

			rec := f.serve(sessionID, multipartRequest(t, "/profile", map[string]string{"name": " ", "draftId": "d1"}))
			if rec.Code != tt.wantStatus {
				t.Fatalf("POST /profile = %d, want %d", rec.Code, tt.wantStatus)
			}

			if got := rec.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}

			flashes := f.popFlashes(sessionID)
			if tt.wantFlash != nil {
				assertFlash(t, flashes, tt.wantFlash.Kind, tt.wantFlash.Message)
			} else if len(flashes) != 0 {
				t.Errorf("flashes = %v, want none", flashes)
			}

			assertBody(t, rec.Body.String(), tt.wantBody, nil)

			if len(f.profiles.updates) != 1 {
				t.Fatalf("updates = %d, want 1", len(f.profiles.updates))
			}

			if edit := f.profiles.updates[0]; edit.Name != " " || edit.DraftID != "d1" || edit.Image != nil {
				t.Errorf("edit = %+v", edit)
			}
		})
	}
}

func TestDiscardImage(t *testing.T) {
	t.Parallel()

	f := setupHandler(t, seeker())

	rec := f.serve(f.signIn(t), formRequest("/profile/discard", url.Values{"draftId": {"d1"}}))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/profile" {
		t.Fatalf("POST /profile/discard = %d %q, want 303 /profile", rec.Code, rec.Header().Get("Location"))
	}

	if len(f.profiles.discarded) != 1 || f.profiles.discarded[0] != "d1" {
		t.Errorf("discarded = %v, want [d1]", f.profiles.discarded)
	}
}

func TestDraftImage(t *testing.T) {
	t.Parallel()

	owner := http_.NewID()
	data := []byte("\x89PNG\r\n\x1a\nimage")
	upload := domain.NewUpload(data, domain.UploadMeta{ //nolint:exhaustruct
		Filename: "avatar.png",
		MIMEType: "image/png",
		Owner:    owner,
	})

	tests := []struct {
		name       string
		sessionID  string
		draftID    string
		wantStatus int
	}{
		{name: "own draft", sessionID: owner, draftID: string(upload.ID()), wantStatus: http.StatusOK},
		{name: "draft of another session", sessionID: http_.NewID(), draftID: string(upload.ID()), wantStatus: http.StatusNotFound},
		{name: "unknown draft", sessionID: owner, draftID: owner + "k2v9x", wantStatus: http.StatusNotFound},
		{name: "id without a name", sessionID: owner, draftID: "k2v9x", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setupHandler(t, seeker())
			f.drafts.uploads[upload.ID()] = upload

			rec := f.serve(tt.sessionID, httptest.NewRequest(http.MethodGet, "/profile/draft/"+tt.draftID, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("GET draft = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus != http.StatusOK {
				return
			}

			if got := rec.Header().Get("Content-Type"); got != "image/png" {
				t.Errorf("Content-Type = %q, want image/png", got)
			}

			if !bytes.Equal(rec.Body.Bytes(), data) {
				t.Errorf("body = %q, want %q", rec.Body.Bytes(), data)
			}
		})
	}
}

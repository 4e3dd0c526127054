package domain_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mkrupp/skillsphere/internal/domain"
)

func TestApplicationDecodesPopulatedAndBareRefs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantJobID  string
		wantTitle  string
		wantSeeker string
	}{
		{
			name:       "populated",
			body:       `{"_id":"a1","jobId":{"_id":"j1","title":"Go Dev","salary":120000},"seekerId":{"_id":"s1","name":"Ada"},"status":"pending","appliedAt":"2024-03-01T10:00:00.000Z"}`,
			wantJobID:  "j1",
			wantTitle:  "Go Dev",
			wantSeeker: "s1",
		},
		{
			name:       "bare ids",
			body:       `{"_id":"a2","jobId":"j2","seekerId":"s2","status":"accepted"}`,
			wantJobID:  "j2",
			wantSeeker: "s2",
		},
		{
			name: "null refs",
			body: `{"_id":"a3","jobId":null,"status":"rejected"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var app domain.Application
			if err := json.Unmarshal([]byte(tt.body), &app); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if app.Job.ID != tt.wantJobID {
				t.Errorf("job id = %q, want %q", app.Job.ID, tt.wantJobID)
			}

			if app.Job.Get().Title != tt.wantTitle {
				t.Errorf("job title = %q, want %q", app.Job.Get().Title, tt.wantTitle)
			}

			if app.Seeker.ID != tt.wantSeeker {
				t.Errorf("seeker id = %q, want %q", app.Seeker.ID, tt.wantSeeker)
			}
		})
	}
}

func TestTimestampLenientDecode(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "iso with zone", raw: `"2024-03-01T10:00:00.000Z"`, want: want},
		{name: "iso without zone", raw: `"2024-03-01 10:00:00"`, want: want},
		{name: "epoch millis", raw: `1709287200000`, want: want},
		{name: "garbage", raw: `"not a date"`},
		{name: "null", raw: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ts domain.Timestamp
			if err := json.Unmarshal([]byte(tt.raw), &ts); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if !ts.Equal(tt.want) {
				t.Errorf("got %v, want %v", ts.Time, tt.want)
			}
		})
	}
}

func TestTextAcceptsMixedShapes(t *testing.T) {
	t.Parallel()

	var job domain.Job

	body := `{"_id":"j1","salary":95000,"requirements":["Go","SQL"],"benefits":"Remote"}`
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if job.Salary != "95000" || job.Requirements != "Go, SQL" || job.Benefits != "Remote" {
		t.Errorf("unexpected job: %+v", job)
	}
}

func TestResolveView(t *testing.T) {
	t.Parallel()

	seeker := domain.User{ID: "1", Role: domain.RoleSeeker, Skills: []string{"Go"}}
	employer := domain.User{ID: "2", Role: domain.RoleEmployer, Company: "Acme"}

	view, err := domain.ResolveView(seeker)
	if err != nil {
		t.Fatal(err)
	}

	if sv, ok := view.(domain.SeekerView); !ok || sv.Skills[0] != "Go" {
		t.Errorf("seeker view = %#v", view)
	}

	view, err = domain.ResolveView(employer)
	if err != nil {
		t.Fatal(err)
	}

	if ev, ok := view.(domain.EmployerView); !ok || ev.Company != "Acme" {
		t.Errorf("employer view = %#v", view)
	}

	if _, err := domain.ResolveView(domain.User{Role: "admin"}); !errors.Is(err, domain.ErrUnknownRole) {
		t.Errorf("expected ErrUnknownRole, got %v", err)
	}
}

func TestUserNormalize(t *testing.T) {
	t.Parallel()

	user := domain.User{ID: "1", Name: "Ada", Role: domain.RoleEmployer, Company: "Acme", Skills: []string{"Go"}}.Normalize()

	if user.Skills != nil || user.Company != "Acme" {
		t.Errorf("unexpected normalized employer: %+v", user)
	}

	if got := (domain.User{}).Initial(); got != "U" {
		t.Errorf("Initial() = %q", got)
	}
}

func TestJobSearch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		search    domain.JobSearch
		wantEmpty bool
		wantQuery string
	}{
		{name: "no filters", search: domain.JobSearch{}, wantEmpty: true},
		{name: "blank filters", search: domain.JobSearch{Skills: []string{" "}, Location: "  "}, wantEmpty: true},
		{name: "skills only", search: domain.JobSearch{Skills: []string{"Go", "go", "React"}}, wantQuery: "skills=Go%2CReact"},
		{name: "both", search: domain.JobSearch{Skills: []string{"Go"}, Location: " Remote "}, wantQuery: "location=Remote&skills=Go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.search.Empty(); got != tt.wantEmpty {
				t.Errorf("Empty() = %v, want %v", got, tt.wantEmpty)
			}

			if got := tt.search.Query().Encode(); got != tt.wantQuery {
				t.Errorf("Query() = %q, want %q", got, tt.wantQuery)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	t.Parallel()

	if got := domain.StatusAccepted.Label(); got != "Accepted" {
		t.Errorf("Label() = %q", got)
	}

	if got := domain.Status("ARCHIVED").Normalized(); got != domain.StatusPending {
		t.Errorf("Normalized() = %q", got)
	}
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	verrs := domain.ValidationErrors{}
	if verrs.Err() != nil {
		t.Fatal("empty validation errors must be nil")
	}

	verrs.Add("resume", "first")
	verrs.Add("resume", "second")
	verrs.Set("coverLetter", "required")

	err := verrs.Err()
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	got, ok := domain.AsValidationErrors(err)
	if !ok || got["resume"] != "first" || got["coverLetter"] != "required" {
		t.Errorf("unexpected fields: %v", got)
	}
}

func TestUploadIDHasOwnerPrefix(t *testing.T) {
	t.Parallel()

	a := domain.NewUpload([]byte("one"), domain.UploadMeta{Owner: "session", Filename: "a.png", MIMEType: "image/png"})
	b := domain.NewUpload([]byte("two"), domain.UploadMeta{Owner: "session", Filename: "a.png", MIMEType: "image/png"})

	if !strings.HasPrefix(a.ID().String(), "session") {
		t.Errorf("id %q lacks owner prefix", a.ID())
	}

	if a.ID() == b.ID() {
		t.Error("different content must yield different ids")
	}

	if a.WithMIMEType("image/jpeg").ID() == a.ID() {
		t.Error("changed type must yield a different id")
	}
}

func TestUploadSniffed(t *testing.T) {
	t.Parallel()

	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")

	tests := []struct {
		name     string
		data     []byte
		declared string
		want     string
	}{
		{"declared type kept", pdf, "application/msword", "application/msword"},
		{"parameters dropped", []byte("hello"), "Text/Plain; charset=utf-8", "text/plain"},
		{"missing type sniffed", pdf, "", "application/pdf"},
		{"generic type sniffed", pdf, "application/octet-stream", "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			upload := domain.NewUpload(tt.data, domain.UploadMeta{Owner: "s", Filename: "cv", MIMEType: tt.declared})

			if got := upload.Sniffed().MIMEType(); got != tt.want {
				t.Errorf("MIMEType() = %q, want %q", got, tt.want)
			}
		})
	}
}

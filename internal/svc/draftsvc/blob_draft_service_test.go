package draftsvc_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mkrupp/skillsphere/internal/domain"
	context_ "github.com/mkrupp/skillsphere/internal/infra/context"
	"github.com/mkrupp/skillsphere/internal/repo/blob"
	"github.com/mkrupp/skillsphere/internal/svc/draftsvc"
	"github.com/mkrupp/skillsphere/internal/svc/sessionsvc"
)

type mockRepository struct {
	blobs     map[domain.BlobID][]byte
	storedAt  map[domain.BlobID]time.Time
	m         *sync.Mutex
	lockErr   error
	storeErr  error
	fetchErr  error
	deleteErr error
	locked    []domain.BlobID
}

func (m *mockRepository) Lock(_ context.Context, id domain.BlobID, _ bool) (func(), error) {
	if m.lockErr != nil {
		return nil, m.lockErr
	}

	m.m.Lock()
	defer m.m.Unlock()

	m.locked = append(m.locked, id)

	return func() {}, nil
}

func (m *mockRepository) lockCount() int {
	m.m.Lock()
	defer m.m.Unlock()

	return len(m.locked)
}

func (m *mockRepository) Store(_ context.Context, blob *domain.Blob) error {
	if m.storeErr != nil {
		return m.storeErr
	}

	m.m.Lock()
	defer m.m.Unlock()

	m.blobs[blob.ID] = blob.Body
	m.storedAt[blob.ID] = time.Now()

	return nil
}

func (m *mockRepository) Fetch(_ context.Context, id domain.BlobID) (*domain.Blob, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}

	m.m.Lock()
	defer m.m.Unlock()

	data, exists := m.blobs[id]
	if !exists {
		return nil, errors.New("blob not found")
	}

	return domain.NewBlob(id, data), nil
}

func (m *mockRepository) Delete(_ context.Context, id domain.BlobID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}

	m.m.Lock()
	defer m.m.Unlock()

	delete(m.blobs, id)

	return nil
}

// DeleteAll only understands the "*" suffix pattern.
func (m *mockRepository) DeleteAll(_ context.Context, prefix domain.BlobID, _ string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}

	m.m.Lock()
	defer m.m.Unlock()

	for id := range m.blobs {
		if strings.HasPrefix(string(id), string(prefix)) {
			delete(m.blobs, id)
		}
	}

	return nil
}

func (m *mockRepository) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	m.m.Lock()
	defer m.m.Unlock()

	swept := 0

	for id, at := range m.storedAt {
		if at.Before(cutoff) {
			delete(m.blobs, id)
			delete(m.storedAt, id)

			swept++
		}
	}

	return swept, nil
}

func (m *mockRepository) Exists(_ context.Context, id domain.BlobID) bool {
	m.m.Lock()
	defer m.m.Unlock()

	_, exists := m.blobs[id]

	return exists
}

func newMockRepo() *mockRepository {
	return &mockRepository{
		blobs:    make(map[domain.BlobID][]byte),
		storedAt: make(map[domain.BlobID]time.Time),
		m:        &sync.Mutex{},
	}
}

func setupDraftService(t *testing.T) (*draftsvc.BlobDraftService, *mockRepository, *mockRepository) {
	t.Helper()

	dataRepo := newMockRepo()
	metaRepo := newMockRepo()

	factory := func(_ context.Context, name string, ext string) (blob.Repository, error) {
		if name == "data" && ext == "bin" {
			return dataRepo, nil
		}

		return metaRepo, nil
	}

	svc, err := draftsvc.NewBlobDraftService(context.Background(), factory, draftsvc.DraftConfig{
		MaxSize: 1024 * 1024, // 1MB
	})
	if err != nil {
		t.Fatalf("failed to create draft service: %v", err)
	}

	return svc, dataRepo, metaRepo
}

func newDraft(owner, content string) domain.Upload {
	return domain.NewUpload([]byte(content), domain.UploadMeta{
		Filename: "avatar.png",
		MIMEType: "image/png",
		Owner:    owner,
	})
}

func sessionCtx(sessionID string) context.Context {
	return context_.WithSessionID(context.Background(), sessionID)
}

func TestBlobDraftService_Stage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		upload     domain.Upload
		session    string
		setupMocks func(d, m *mockRepository)
		wantErr    bool
		wantIs     error
	}{
		{
			name:       "stages draft",
			upload:     newDraft("sess1", "png"),
			session:    "sess1",
			setupMocks: func(d, m *mockRepository) {},
		},
		{
			name:       "draft of another session",
			upload:     newDraft("sess1", "png"),
			session:    "sess2",
			setupMocks: func(d, m *mockRepository) {},
			wantErr:    true,
			wantIs:     domain.ErrUnauthorized,
		},
		{
			name:       "draft too large",
			upload:     newDraft("sess1", strings.Repeat("x", 2*1024*1024)),
			session:    "sess1",
			setupMocks: func(d, m *mockRepository) {},
			wantErr:    true,
			wantIs:     domain.ErrUploadTooLarge,
		},
		{
			name:    "data store error",
			upload:  newDraft("sess1", "png"),
			session: "sess1",
			setupMocks: func(d, m *mockRepository) {
				d.storeErr = errors.New("disk full")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, dataRepo, metaRepo := setupDraftService(t)
			tt.setupMocks(dataRepo, metaRepo)

			ctx := sessionCtx(tt.session)
			meta, err := svc.Stage(ctx, tt.upload)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Stage() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("Stage() error = %v, want %v", err, tt.wantIs)
			}

			if tt.wantErr {
				if metaRepo.Exists(ctx, tt.upload.ID()) {
					t.Error("meta blob stored despite error")
				}

				return
			}

			if meta.ID != tt.upload.ID() || !strings.HasPrefix(string(meta.ID), "sess1") {
				t.Errorf("unexpected meta %+v", meta)
			}

			if !dataRepo.Exists(ctx, meta.ID) || !metaRepo.Exists(ctx, meta.ID) {
				t.Error("draft was not stored")
			}
		})
	}
}

func TestBlobDraftService_Fetch(t *testing.T) {
	t.Parallel()

	svc, _, _ := setupDraftService(t)
	draft := newDraft("sess1", "png-bytes")

	if _, err := svc.Stage(sessionCtx("sess1"), draft); err != nil {
		t.Fatalf("failed to stage draft: %v", err)
	}

	tests := []struct {
		name    string
		id      domain.DraftID
		session string
		wantErr bool
		wantIs  error
	}{
		{name: "fetches own draft", id: draft.ID(), session: "sess1"},
		{name: "other session", id: draft.ID(), session: "sess2", wantErr: true, wantIs: domain.ErrUnauthorized},
		{name: "missing draft", id: "sess1nonexistent", session: "sess1", wantErr: true, wantIs: fs.ErrNotExist},
		{name: "foreign id", id: "sess2nonexistent", session: "sess1", wantErr: true, wantIs: domain.ErrUnauthorized},
		{name: "empty id", id: "", session: "sess1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			upload, err := svc.Fetch(sessionCtx(tt.session), tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.wantIs)
			}

			if err == nil && (string(upload.Bytes()) != "png-bytes" || upload.MIMEType() != "image/png") {
				t.Errorf("Fetch() got %q %q", upload.Bytes(), upload.MIMEType())
			}
		})
	}
}

func TestBlobDraftService_Discard(t *testing.T) {
	t.Parallel()

	svc, dataRepo, metaRepo := setupDraftService(t)
	draft := newDraft("sess1", "png")
	ctx := sessionCtx("sess1")

	if _, err := svc.Stage(ctx, draft); err != nil {
		t.Fatalf("failed to stage draft: %v", err)
	}

	if err := svc.Discard(sessionCtx("sess2"), draft.ID()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Discard() by other session error = %v", err)
	}

	for range 2 {
		if err := svc.Discard(ctx, draft.ID()); err != nil {
			t.Fatalf("Discard() error = %v", err)
		}
	}

	if dataRepo.Exists(ctx, draft.ID()) || metaRepo.Exists(ctx, draft.ID()) {
		t.Error("draft was not removed")
	}
}

func TestBlobDraftService_DiscardOnLogout(t *testing.T) {
	t.Parallel()

	svc, dataRepo, metaRepo := setupDraftService(t)

	mine := newDraft("sess1", "one")
	other := newDraft("sess2", "two")

	if _, err := svc.Stage(sessionCtx("sess1"), mine); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Stage(sessionCtx("sess2"), other); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	svc.HandleSessionEvent(ctx, sessionsvc.Event{Kind: sessionsvc.ProfileLoaded, SessionID: "sess1"})

	if !metaRepo.Exists(ctx, mine.ID()) {
		t.Fatal("draft removed on a non-logout event")
	}

	svc.HandleSessionEvent(ctx, sessionsvc.Event{Kind: sessionsvc.LoggedOut, SessionID: "sess1"})

	if dataRepo.Exists(ctx, mine.ID()) || metaRepo.Exists(ctx, mine.ID()) {
		t.Error("draft of logged out session survived")
	}

	if !dataRepo.Exists(ctx, other.ID()) || !metaRepo.Exists(ctx, other.ID()) {
		t.Error("draft of another session was removed")
	}
}

func TestBlobDraftService_PurgeStale(t *testing.T) {
	t.Parallel()

	svc, dataRepo, metaRepo := setupDraftService(t)
	draft := newDraft("sess1", "png")
	ctx := sessionCtx("sess1")

	if _, err := svc.Stage(ctx, draft); err != nil {
		t.Fatalf("failed to stage draft: %v", err)
	}

	purged, err := svc.PurgeStale(ctx, time.Now().Add(-time.Hour))
	if err != nil || purged != 0 {
		t.Fatalf("PurgeStale(an hour ago) = %d, %v; want 0, nil", purged, err)
	}

	if !dataRepo.Exists(ctx, draft.ID()) {
		t.Fatal("fresh draft was purged")
	}

	purged, err = svc.PurgeStale(ctx, time.Now().Add(time.Minute))
	if err != nil || purged != 1 {
		t.Fatalf("PurgeStale(future) = %d, %v; want 1, nil", purged, err)
	}

	if dataRepo.Exists(ctx, draft.ID()) || metaRepo.Exists(ctx, draft.ID()) {
		t.Error("stale draft survived")
	}
}

func TestBlobDraftService_UnknownDraftTakesNoLock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   domain.DraftID
	}{
		{name: "missing draft of the session", id: "sess1nonexistent"},
		{name: "draft id of another session", id: "sess2nonexistent"},
		{name: "traversal", id: "../../etc/passwd"},
		{name: "bare session id", id: "sess1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, _, metaRepo := setupDraftService(t)
			ctx := sessionCtx("sess1")

			if _, err := svc.Fetch(ctx, tt.id); err == nil {
				t.Error("Fetch() succeeded for an unknown draft")
			}

			_ = svc.Discard(ctx, tt.id)

			if n := metaRepo.lockCount(); n != 0 {
				t.Errorf("meta repository locked %d times, want 0", n)
			}
		})
	}
}

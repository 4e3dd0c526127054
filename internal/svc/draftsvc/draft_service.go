package draftsvc

import (
	"context"
	"time"

	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/svc/sessionsvc"
)

// DraftService holds files a user selected but has not submitted yet. Every
// draft belongs to the browser session that staged it.
type DraftService interface {
	// Stage persists the upload for its owning session, which must be the
	// session in ctx. Returns the stored metadata.
	Stage(ctx context.Context, upload domain.Upload) (domain.UploadMeta, error)

	// Fetch retrieves a draft of the session in ctx.
	// Drafts of other sessions fail with domain.ErrUnauthorized.
	Fetch(ctx context.Context, draftID domain.DraftID) (domain.Upload, error)

	// Discard removes a draft of the session in ctx. Unknown drafts are ignored.
	Discard(ctx context.Context, draftID domain.DraftID) error

	// DiscardAll removes every draft of the session.
	DiscardAll(ctx context.Context, sessionID string) error

	// PurgeStale removes drafts of any session staged before cutoff and
	// reports how many were removed.
	PurgeStale(ctx context.Context, cutoff time.Time) (int, error)

	// HandleSessionEvent discards a session's drafts once it logs out.
	HandleSessionEvent(ctx context.Context, event sessionsvc.Event)

	// MaxSize returns the maximum allowed draft size in bytes.
	MaxSize() int64
}

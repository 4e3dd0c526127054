package draftsvc

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/mkrupp/skillsphere/internal/domain"
	context_ "github.com/mkrupp/skillsphere/internal/infra/context"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
	"github.com/mkrupp/skillsphere/internal/repo/blob"
	"github.com/mkrupp/skillsphere/internal/svc/sessionsvc"
)

// sessionPattern matches every draft ID that extends a session ID.
const sessionPattern = "*"

// BlobDraftService implements DraftService using blob storage.
// Content and metadata live in separate repositories, both keyed by draft ID.
type BlobDraftService struct {
	dataRepo blob.Repository
	metaRepo blob.Repository
	cfg      DraftConfig
	log      logging.Logger
}

var _ DraftService = (*BlobDraftService)(nil)

// NewBlobDraftService creates a new BlobDraftService with the given configuration.
// It initializes two blob repositories:
// - data: for the staged file content
// - meta: for the draft metadata
// Returns an error if any repository initialization fails.
func NewBlobDraftService(
	ctx context.Context,
	repoFactory blob.RepositoryFactory,
	cfg DraftConfig,
) (*BlobDraftService, error) {
	log := logging.GetLogger("svc.draftsvc.blob_draft_service")

	dataRepo, err := repoFactory(ctx, "data", "bin")
	if err != nil {
		return nil, fmt.Errorf("new data repository: %w", err)
	}

	metaRepo, err := repoFactory(ctx, "meta", "json")
	if err != nil {
		return nil, fmt.Errorf("new meta repository: %w", err)
	}

	return &BlobDraftService{
		dataRepo: dataRepo,
		metaRepo: metaRepo,
		cfg:      cfg,
		log:      log,
	}, nil
}

// MaxSize implements DraftService.MaxSize.
func (draftSvc BlobDraftService) MaxSize() int64 {
	return draftSvc.cfg.MaxSize
}

// Stage implements DraftService.Stage.
func (draftSvc BlobDraftService) Stage(
	ctx context.Context,
	upload domain.Upload,
) (meta domain.UploadMeta, err error) {
	log := draftSvc.log.With(logging.Group("draft",
		"id", upload.ID(),
		"size", upload.Size(),
		"type", upload.MIMEType(),
	))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "draft stage failed", "error", err)
		} else {
			log.DebugContext(ctx, "draft staged")
		}
	}()

	if err := authorize(ctx, upload.Owner()); err != nil {
		return domain.UploadMeta{}, err
	}

	if upload.Size() > draftSvc.cfg.MaxSize {
		return domain.UploadMeta{}, fmt.Errorf("%w: %d exceeds %d",
			domain.ErrUploadTooLarge, upload.Size(), draftSvc.cfg.MaxSize)
	}

	// Lock meta blob
	metaBlob, err := upload.Meta().AsBlob()
	if err != nil {
		return domain.UploadMeta{}, fmt.Errorf("convert meta to blob: %w", err)
	}

	unlockMeta, err := draftSvc.metaRepo.Lock(ctx, metaBlob.ID, true)
	if err != nil {
		return domain.UploadMeta{}, fmt.Errorf("lock meta: %w", err)
	}
	defer unlockMeta()

	// Store data before meta so a visible draft always has content
	if err := draftSvc.dataRepo.Store(ctx, upload.AsBlob()); err != nil {
		return domain.UploadMeta{}, fmt.Errorf("store data: %w", err)
	}

	if err := draftSvc.metaRepo.Store(ctx, metaBlob); err != nil {
		return domain.UploadMeta{}, fmt.Errorf("store meta: %w", err)
	}

	return upload.Meta(), nil
}

// Fetch implements DraftService.Fetch.
func (draftSvc BlobDraftService) Fetch(
	ctx context.Context,
	draftID domain.DraftID,
) (upload domain.Upload, err error) {
	log := draftSvc.log.With(logging.Group("draft", "id", draftID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "draft fetch failed", "error", err)
		} else {
			log.DebugContext(ctx, "draft fetched")
		}
	}()

	if draftID == "" {
		return domain.Upload{}, domain.ErrNoDraftID
	}

	if err := claim(ctx, draftID); err != nil {
		return domain.Upload{}, err
	}

	if !draftSvc.metaRepo.Exists(ctx, draftID) {
		return domain.Upload{}, fmt.Errorf("fetch meta: %w", fs.ErrNotExist)
	}

	// Lock meta blob
	unlockMeta, err := draftSvc.metaRepo.Lock(ctx, draftID, false)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("lock meta: %w", err)
	}
	defer unlockMeta()

	meta, err := draftSvc.fetchMeta(ctx, draftID)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("fetch meta: %w", err)
	}

	log = log.With(logging.Group("draft",
		"size", meta.Size,
		"type", meta.MIMEType,
		"filename", meta.Filename,
	))

	if err := authorize(ctx, meta.Owner); err != nil {
		return domain.Upload{}, err
	}

	dataBlob, err := draftSvc.dataRepo.Fetch(ctx, draftID)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("fetch data: %w", err)
	}

	return domain.NewUpload(dataBlob.Bytes(), meta), nil
}

// Discard implements DraftService.Discard.
func (draftSvc BlobDraftService) Discard(ctx context.Context, draftID domain.DraftID) (err error) {
	log := draftSvc.log.With(logging.Group("draft", "id", draftID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "draft discard failed", "error", err)
		} else {
			log.DebugContext(ctx, "draft discarded")
		}
	}()

	if draftID == "" {
		return domain.ErrNoDraftID
	}

	if err := claim(ctx, draftID); err != nil {
		return err
	}

	if !draftSvc.metaRepo.Exists(ctx, draftID) {
		return nil
	}

	// Lock meta blob
	unlockMeta, err := draftSvc.metaRepo.Lock(ctx, draftID, true)
	if err != nil {
		return fmt.Errorf("lock meta: %w", err)
	}
	defer unlockMeta()

	if !draftSvc.metaRepo.Exists(ctx, draftID) {
		return nil
	}

	meta, err := draftSvc.fetchMeta(ctx, draftID)
	if err != nil {
		return fmt.Errorf("fetch meta: %w", err)
	}

	if err := authorize(ctx, meta.Owner); err != nil {
		return err
	}

	if draftSvc.dataRepo.Exists(ctx, draftID) {
		if err := draftSvc.dataRepo.Delete(ctx, draftID); err != nil {
			return fmt.Errorf("delete data: %w", err)
		}
	}

	if err := draftSvc.metaRepo.Delete(ctx, draftID); err != nil {
		return fmt.Errorf("delete meta: %w", err)
	}

	return nil
}

// DiscardAll implements DraftService.DiscardAll.
func (draftSvc BlobDraftService) DiscardAll(ctx context.Context, sessionID string) (err error) {
	log := draftSvc.log.With(logging.Group("session", "id", sessionID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "drafts discard failed", "error", err)
		} else {
			log.DebugContext(ctx, "drafts discarded")
		}
	}()

	if sessionID == "" {
		return domain.ErrNoDraftID
	}

	if err := draftSvc.metaRepo.DeleteAll(ctx, domain.DraftID(sessionID), sessionPattern); err != nil {
		return fmt.Errorf("delete meta: %w", err)
	}

	if err := draftSvc.dataRepo.DeleteAll(ctx, domain.DraftID(sessionID), sessionPattern); err != nil {
		return fmt.Errorf("delete data: %w", err)
	}

	return nil
}

// PurgeStale implements DraftService.PurgeStale.
func (draftSvc BlobDraftService) PurgeStale(ctx context.Context, cutoff time.Time) (purged int, err error) {
	defer func() {
		if err != nil {
			draftSvc.log.ErrorContext(ctx, "drafts purge failed", "error", err)
		} else {
			draftSvc.log.DebugContext(ctx, "drafts purged", "count", purged, "cutoff", cutoff)
		}
	}()

	purged, err = draftSvc.dataRepo.Sweep(ctx, cutoff)
	if err != nil {
		return purged, fmt.Errorf("sweep data: %w", err)
	}

	if _, err := draftSvc.metaRepo.Sweep(ctx, cutoff); err != nil {
		return purged, fmt.Errorf("sweep meta: %w", err)
	}

	return purged, nil
}

// HandleSessionEvent implements DraftService.HandleSessionEvent.
func (draftSvc BlobDraftService) HandleSessionEvent(ctx context.Context, event sessionsvc.Event) {
	if event.Kind != sessionsvc.LoggedOut {
		return
	}

	_ = draftSvc.DiscardAll(ctx, event.SessionID)
}

func (draftSvc BlobDraftService) fetchMeta(
	ctx context.Context,
	draftID domain.DraftID,
) (meta domain.UploadMeta, err error) {
	defer func() {
		log := draftSvc.log.With(logging.Group("draft", "id", draftID))

		if err != nil {
			log.ErrorContext(ctx, "draft fetch-meta failed", "error", err)
		} else {
			log.DebugContext(ctx, "draft meta fetched")
		}
	}()

	metaBlob, err := draftSvc.metaRepo.Fetch(ctx, draftID)
	if err != nil {
		return domain.UploadMeta{}, fmt.Errorf("fetch meta: %w", err)
	}

	meta, err = domain.NewUploadMetaFromBlob(metaBlob)
	if err != nil {
		return domain.UploadMeta{}, fmt.Errorf("convert meta blob: %w", err)
	}

	return meta, nil
}

// claim rejects draft IDs that do not extend the session ID in ctx. Storage
// is only touched for IDs that pass.
func claim(ctx context.Context, draftID domain.DraftID) error {
	sessionID, _ := context_.SessionIDFromContext(ctx)
	if sessionID == "" || len(draftID) <= len(sessionID) || !strings.HasPrefix(string(draftID), sessionID) {
		return fmt.Errorf("%w: draft %q is not of session %q", domain.ErrUnauthorized, draftID, sessionID)
	}

	return nil
}

// authorize checks that the session in ctx owns the draft.
func authorize(ctx context.Context, owner string) error {
	sessionID, ok := context_.SessionIDFromContext(ctx)
	if !ok || owner == "" || sessionID != owner {
		return fmt.Errorf("%w: session %q is not owner %q", domain.ErrUnauthorized, sessionID, owner)
	}

	return nil
}

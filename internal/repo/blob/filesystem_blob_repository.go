package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mkrupp/skillsphere/internal/domain"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
)

var (
	ErrBytesWrittenMismatch = errors.New("bytes written mismatch")
	ErrBytesReadMismatch    = errors.New("bytes read mismatch")
)

const (
	// ownerLength is the length of a session ID, the owner prefix of draft IDs.
	ownerLength = 26

	// looseDir holds blobs whose ID carries no owner prefix.
	looseDir = "_"

	// emptyName stands in for the name of an ID that is exactly an owner.
	emptyName = "_"

	lockSuffix = ".lock"
)

// FileSystemBlobRepositoryConfig holds configuration for the filesystem-based blob repository.
type FileSystemBlobRepositoryConfig struct {
	// Basedir is the root directory for blob storage
	Basedir string `env:"BASEDIR" default:"var/storage/drafts"`
}

// FileSystemBlobRepositoryFactory creates a factory function that returns a new FileSystemRepository.
// The factory function implements the RepositoryFactory type.
func FileSystemBlobRepositoryFactory(cfg FileSystemBlobRepositoryConfig) RepositoryFactory {
	return func(
		ctx context.Context,
		subdir string,
		ext string,
	) (Repository, error) {
		return NewFileSystemBlobRepository(ctx, subdir, ext, cfg)
	}
}

// NewFileSystemBlobRepository creates the repository rooted at basedir/subdir.
// Blob files carry the extension ext.
func NewFileSystemBlobRepository(
	ctx context.Context,
	subdir string,
	ext string,
	cfg FileSystemBlobRepositoryConfig,
) (*FileSystemRepository, error) {
	log := logging.GetLogger("repo.blob.filesystem_blob_repository").With(
		logging.Group("repo",
			"basedir", cfg.Basedir,
			"subdir", subdir,
			"ext", ext,
		),
	)

	repo := &FileSystemRepository{
		root: filepath.Join(cfg.Basedir, subdir),
		ext:  ext,
		log:  log,
	}

	if err := repo.initStorage(ctx); err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}

	return repo, nil
}

// FileSystemRepository implements Repository using the local filesystem.
// Each owning session gets its own directory, named by the session ID, which
// holds that session's blobs:
//
//	<basedir>/<subdir>/01j8f3.../k2v9....bin
//
// IDs shorter than a session ID are kept in a shared "_" directory.
type FileSystemRepository struct {
	root string
	ext  string
	log  logging.Logger
}

var _ Repository = (*FileSystemRepository)(nil)

func (fsRepo *FileSystemRepository) Lock(ctx context.Context, id domain.BlobID, exclusive bool) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("lock: %w", err)
	}

	mode := syscall.LOCK_SH
	if exclusive {
		mode = syscall.LOCK_EX
	}

	release, err := fsRepo.flock(ctx, fsRepo.GetFilename(id)+lockSuffix, mode)
	if err != nil {
		return nil, fmt.Errorf("flock: %w", err)
	}

	return release, nil
}

func (fsRepo *FileSystemRepository) Exists(_ context.Context, id domain.BlobID) bool {
	info, err := os.Stat(fsRepo.GetFilename(id))

	return err == nil && info.Mode().IsRegular()
}

func (fsRepo *FileSystemRepository) Store(ctx context.Context, blob *domain.Blob) (err error) {
	filename := fsRepo.GetFilename(blob.ID)

	defer func() {
		log := fsRepo.log.With(logging.Group("blob", "id", blob.ID, "filename", filename))
		if err != nil {
			log.ErrorContext(ctx, "blob store failed", "error", err)
		} else {
			log.DebugContext(ctx, "blob stored", "size", blob.Size())
		}
	}()

	if err := os.MkdirAll(filepath.Dir(filename), 0o700); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	// Write to a sibling file first so a reader never sees a partial blob.
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	written, err := blob.WriteTo(tmp)
	if err == nil {
		err = tmp.Sync()
	}

	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	if written != blob.Size() {
		return fmt.Errorf("%w: expected %d, got %d", ErrBytesWrittenMismatch, blob.Size(), written)
	}

	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

func (fsRepo *FileSystemRepository) Fetch(ctx context.Context, id domain.BlobID) (blob *domain.Blob, err error) {
	filename := fsRepo.GetFilename(id)

	defer func() {
		log := fsRepo.log.With(logging.Group("blob", "id", id, "filename", filename))
		if err != nil {
			log.ErrorContext(ctx, "blob fetch failed", "error", err)
		} else {
			log.DebugContext(ctx, "blob fetched")
		}
	}()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("fetch blob: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	//nolint:exhaustruct
	blob = &domain.Blob{ID: id}

	n, err := blob.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	if n != info.Size() {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrBytesReadMismatch, info.Size(), n)
	}

	return blob, nil
}

func (fsRepo *FileSystemRepository) Delete(ctx context.Context, id domain.BlobID) (err error) {
	filename := fsRepo.GetFilename(id)

	defer func() {
		log := fsRepo.log.With(logging.Group("blob", "id", id, "filename", filename))
		if err != nil {
			log.ErrorContext(ctx, "blob delete failed", "error", err)
		} else {
			log.DebugContext(ctx, "blob deleted")
		}
	}()

	if err := os.Remove(filename); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}

	fsRepo.pruneDir(filepath.Dir(filename))

	return nil
}

func (fsRepo *FileSystemRepository) DeleteAll(ctx context.Context, id domain.BlobID, pattern string) (err error) {
	deleted := 0

	defer func() {
		log := fsRepo.log.With(logging.Group("blob", "id", id, "pattern", pattern))
		if err != nil {
			log.ErrorContext(ctx, "blob delete all failed", "error", err)
		} else {
			log.DebugContext(ctx, "blobs deleted", "count", deleted)
		}
	}()

	dir, name := fsRepo.split(id)
	if name == emptyName {
		name = ""
	}

	filenames, err := filepath.Glob(filepath.Join(dir, name+pattern+"."+fsRepo.ext))
	if err != nil {
		return fmt.Errorf("glob: %w", err)
	}

	for _, filename := range filenames {
		if err := os.Remove(filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove: %w", err)
		}

		deleted++
	}

	fsRepo.pruneDir(dir)

	return nil
}

func (fsRepo *FileSystemRepository) Sweep(ctx context.Context, cutoff time.Time) (swept int, err error) {
	defer func() {
		if err != nil {
			fsRepo.log.ErrorContext(ctx, "blob sweep failed", "error", err)
		} else {
			fsRepo.log.DebugContext(ctx, "blobs swept", "count", swept, "cutoff", cutoff)
		}
	}()

	owners, err := os.ReadDir(fsRepo.root)
	if err != nil {
		return 0, fmt.Errorf("read root: %w", err)
	}

	for _, owner := range owners {
		if !owner.IsDir() {
			continue
		}

		if err := ctx.Err(); err != nil {
			return swept, fmt.Errorf("sweep: %w", err)
		}

		dir := filepath.Join(fsRepo.root, owner.Name())

		n, err := fsRepo.sweepDir(dir, cutoff)
		swept += n

		if err != nil {
			return swept, err
		}

		fsRepo.pruneDir(dir)
	}

	return swept, nil
}

// GetFilename returns the full filesystem path for a blob with the given ID.
func (fsRepo *FileSystemRepository) GetFilename(id domain.BlobID) string {
	dir, name := fsRepo.split(id)

	return filepath.Join(dir, name+"."+fsRepo.ext)
}

// split maps an ID to its owner directory and the file name within it.
func (fsRepo *FileSystemRepository) split(id domain.BlobID) (dir, name string) {
	s := filepath.Base(filepath.Clean("/" + string(id)))

	if len(s) < ownerLength {
		return filepath.Join(fsRepo.root, looseDir), s
	}

	name = s[ownerLength:]
	if name == "" {
		name = emptyName
	}

	return filepath.Join(fsRepo.root, s[:ownerLength]), name
}

func (fsRepo *FileSystemRepository) sweepDir(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read dir: %w", err)
	}

	swept := 0

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) == lockSuffix {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return swept, fmt.Errorf("remove: %w", err)
		}

		swept++
	}

	return swept, nil
}

// pruneDir removes an owner directory once it is empty.
func (fsRepo *FileSystemRepository) pruneDir(dir string) {
	if dir == fsRepo.root {
		return
	}

	_ = os.Remove(dir) // fails while the directory still has entries
}

func (fsRepo *FileSystemRepository) initStorage(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			fsRepo.log.ErrorContext(ctx, "init storage failed", "error", err)
		} else {
			fsRepo.log.DebugContext(ctx, "init storage")
		}
	}()

	if err := os.MkdirAll(fsRepo.root, 0o700); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	return nil
}

func (fsRepo *FileSystemRepository) flock(ctx context.Context, lockfile string, mode int) (release func(), err error) {
	log := fsRepo.log.With(logging.Group("blob", "lockfile", lockfile))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "lock failed", "error", err)
		} else {
			log.DebugContext(ctx, "lock acquired")
		}
	}()

	if err := os.MkdirAll(filepath.Dir(lockfile), 0o700); err != nil {
		return nil, fmt.Errorf("mkdir all: %w", err)
	}

	file, err := os.OpenFile(lockfile, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), mode); err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("flock: %w", err)
	}

	return func() {
		_ = os.Remove(lockfile)
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()

		log.DebugContext(ctx, "lock released")
	}, nil
}

package patchsync

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/sync/semaphore"

	"github.com/input-output-hk/patchsync/aws/s3"
	"github.com/input-output-hk/patchsync/aws/s3/s3types"
	psErrors "github.com/input-output-hk/patchsync/errors"
	"github.com/input-output-hk/patchsync/git"
)

// ObjectStore is the remote key/blob store patches are exchanged through.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// StoreFactory builds an ObjectStore for a validated Config.
type StoreFactory func(cfg Config) (ObjectStore, error)

// PatchBuilder produces a patch file from a working tree.
type PatchBuilder interface {
	BuildPatch(ctx context.Context, repoRoot, patchName string, selection []string) (string, error)
}

// PatchApplier applies a patch file to a working tree.
type PatchApplier interface {
	Apply(ctx context.Context, patchFilePath, repoRoot string) error
}

// ChangeLister lists the changed paths of a working tree.
type ChangeLister interface {
	ChangedPaths(ctx context.Context, repoRoot string) ([]string, error)
}

// Orchestrator runs the patch exchange workflows. Each workflow returns a
// Task immediately and runs on its own goroutine; at most MaxConcurrent run
// at once and the rest wait their turn. A failed task never affects other
// tasks and nothing is retried.
type Orchestrator struct {
	storeFactory  StoreFactory
	storeOptions  []s3types.Option
	builder       PatchBuilder
	applier       PatchApplier
	lister        ChangeLister
	fs            billy.Filesystem
	logger        *slog.Logger
	maxConcurrent int
	taskTimeout   time.Duration
	onComplete    func(*Task)

	sem       *semaphore.Weighted
	nextID    atomic.Uint64
	wg        sync.WaitGroup
	handlerMu sync.Mutex

	mu       sync.Mutex
	lastKeys []string
}

// New creates an Orchestrator. Without options it talks to S3 and runs git
// on the OS filesystem.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		maxConcurrent: DefaultMaxConcurrent,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.fs == nil {
		o.fs = osfs.New("/")
	}
	if o.storeFactory == nil {
		o.storeFactory = o.defaultStore
	}
	if o.builder == nil {
		o.builder = git.NewDiffRunner(git.WithFilesystem(o.fs), git.WithLogger(o.logger))
	}
	if o.applier == nil {
		o.applier = git.NewPatchApplier(git.WithFilesystem(o.fs), git.WithLogger(o.logger))
	}
	if o.lister == nil {
		o.lister = git.NewChangeLister()
	}
	o.sem = semaphore.NewWeighted(int64(o.maxConcurrent))

	return o
}

func (o *Orchestrator) defaultStore(cfg Config) (ObjectStore, error) {
	opts := append([]s3types.Option{s3.WithLogger(o.logger)}, o.storeOptions...)
	c, err := s3.New(cfg.Credentials(), cfg.Bucket, opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateAndUpload builds name.patch from cfg.RepoPath scoped to selection and
// uploads it under the key name.patch. An empty selection uploads the
// unscoped diff, which may be empty.
func (o *Orchestrator) CreateAndUpload(ctx context.Context, cfg Config, name string, selection []string) *Task {
	const w = WorkflowCreateAndUpload
	return o.run(ctx, w, func(ctx context.Context) (Result, error) {
		if err := cfg.ValidateRepo(); err != nil {
			return Result{}, err
		}
		store, err := o.store(cfg)
		if err != nil {
			return Result{}, err
		}

		patch, err := o.builder.BuildPatch(ctx, cfg.RepoPath, name, selection)
		if err != nil {
			return Result{}, stepError(w, "build patch", err)
		}

		data, err := util.ReadFile(o.fs, patch)
		if err != nil {
			return Result{PatchPath: patch}, stepError(w, "read patch",
				psErrors.Wrapf(err, psErrors.CodeInternal, "read %s", patch))
		}

		key := name + git.PatchExt
		if err := store.Put(ctx, key, data); err != nil {
			return Result{PatchPath: patch}, stepError(w, "upload", err)
		}

		return Result{Key: key, PatchPath: patch}, nil
	})
}

// ListAvailable lists every key in the bucket and records the listing as the
// last known key set.
func (o *Orchestrator) ListAvailable(ctx context.Context, cfg Config) *Task {
	const w = WorkflowListAvailable
	return o.run(ctx, w, func(ctx context.Context) (Result, error) {
		store, err := o.store(cfg)
		if err != nil {
			return Result{}, err
		}

		keys, err := store.List(ctx, "")
		if err != nil {
			return Result{}, stepError(w, "list", err)
		}

		o.mu.Lock()
		o.lastKeys = append([]string(nil), keys...)
		o.mu.Unlock()

		return Result{Keys: keys}, nil
	})
}

// LastKnownKeys returns a copy of the keys from the most recent successful
// ListAvailable.
func (o *Orchestrator) LastKnownKeys() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.lastKeys...)
}

// DownloadAndApply downloads key, writes it to targetDir/key and applies it
// to targetDir. An empty targetDir means cfg.RepoPath; a relative one is
// resolved against the process working directory. Nothing is applied if the
// download fails.
func (o *Orchestrator) DownloadAndApply(ctx context.Context, cfg Config, key, targetDir string) *Task {
	const w = WorkflowDownloadAndApply
	return o.run(ctx, w, func(ctx context.Context) (Result, error) {
		if targetDir == "" {
			if err := cfg.ValidateRepo(); err != nil {
				return Result{}, err
			}
			targetDir = cfg.RepoPath
		}
		dir, err := filepath.Abs(targetDir)
		if err != nil {
			return Result{}, psErrors.Wrapf(err, psErrors.CodeInvalidConfig, "resolve target %s", targetDir)
		}
		dest, err := localPath(dir, key)
		if err != nil {
			return Result{}, err
		}
		store, err := o.store(cfg)
		if err != nil {
			return Result{}, err
		}

		data, err := store.Get(ctx, key)
		if err != nil {
			return Result{Key: key}, stepError(w, "download", err)
		}

		if err := o.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return Result{Key: key}, stepError(w, "write patch",
				psErrors.Wrapf(err, psErrors.CodeInternal, "create %s", filepath.Dir(dest)))
		}
		if err := util.WriteFile(o.fs, dest, data, 0o644); err != nil {
			return Result{Key: key}, stepError(w, "write patch",
				psErrors.Wrapf(err, psErrors.CodeInternal, "write %s", dest))
		}

		if err := o.applier.Apply(ctx, dest, dir); err != nil {
			return Result{Key: key, PatchPath: dest}, stepError(w, "apply", err)
		}

		return Result{Key: key, PatchPath: dest}, nil
	})
}

// Delete removes key from the bucket. Deleting an absent key succeeds.
func (o *Orchestrator) Delete(ctx context.Context, cfg Config, key string) *Task {
	const w = WorkflowDelete
	return o.run(ctx, w, func(ctx context.Context) (Result, error) {
		store, err := o.store(cfg)
		if err != nil {
			return Result{}, err
		}
		if err := store.Delete(ctx, key); err != nil {
			return Result{Key: key}, stepError(w, "delete", err)
		}
		return Result{Key: key}, nil
	})
}

// ListChanges lists the changed paths of cfg.RepoPath a selection can be
// chosen from. It does not touch the store.
func (o *Orchestrator) ListChanges(ctx context.Context, cfg Config) *Task {
	const w = WorkflowListChanges
	return o.run(ctx, w, func(ctx context.Context) (Result, error) {
		if err := cfg.ValidateRepo(); err != nil {
			return Result{}, err
		}
		paths, err := o.lister.ChangedPaths(ctx, cfg.RepoPath)
		if err != nil {
			return Result{}, stepError(w, "status", err)
		}
		return Result{Paths: paths}, nil
	})
}

// Wait blocks until every task started so far has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) store(cfg Config) (ObjectStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return o.storeFactory(cfg)
}

func (o *Orchestrator) run(ctx context.Context, w Workflow, fn func(context.Context) (Result, error)) *Task {
	t := newTask(o.nextID.Add(1), w)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		start := time.Now()
		res, err := o.execute(ctx, t, fn)
		res.Err = err
		res.Duration = time.Since(start)

		if t.finish(res) {
			close(t.done)
			o.complete(t)
		}
	}()

	return t
}

func (o *Orchestrator) execute(ctx context.Context, t *Task, fn func(context.Context) (Result, error)) (Result, error) {
	if err := o.sem.Acquire(ctx, 1); err != nil {
		return Result{}, err
	}
	defer o.sem.Release(1)

	if o.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.taskTimeout)
		defer cancel()
	}

	t.start()
	o.logger.Debug("workflow started", "task", t.id, "workflow", t.workflow)
	return fn(ctx)
}

func (o *Orchestrator) complete(t *Task) {
	res, _ := t.Result()
	state := t.State()

	if res.Err != nil {
		o.logger.Warn("workflow failed",
			"task", t.id,
			"workflow", t.workflow,
			"code", psErrors.GetCode(res.Err),
			"error", res.Err,
			"duration", res.Duration,
		)
	} else {
		o.logger.Info("workflow finished",
			"task", t.id,
			"workflow", t.workflow,
			"state", state.String(),
			"duration", res.Duration,
		)
	}

	if o.onComplete == nil {
		return
	}
	o.handlerMu.Lock()
	defer o.handlerMu.Unlock()
	o.onComplete(t)
}

// localPath joins key under dir and rejects keys that would escape it.
func localPath(dir, key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	p := filepath.Join(dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", psErrors.Wrapf(ErrInvalidKey, psErrors.CodeInvalidConfig, "%q", key)
	}
	return p, nil
}

package patchsync

import (
	"log/slog"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/patchsync/aws/s3/s3types"
)

// DefaultMaxConcurrent bounds the number of workflows running at once.
const DefaultMaxConcurrent = 4

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStoreFactory replaces how an ObjectStore is built from a Config.
func WithStoreFactory(f StoreFactory) Option {
	return func(o *Orchestrator) {
		o.storeFactory = f
	}
}

// WithStoreOptions passes options to the default store factory, for example
// s3.WithEndpoint for S3-compatible stores. Ignored with WithStoreFactory.
func WithStoreOptions(opts ...s3types.Option) Option {
	return func(o *Orchestrator) {
		o.storeOptions = append(o.storeOptions, opts...)
	}
}

// WithDiffRunner replaces the patch builder.
func WithDiffRunner(b PatchBuilder) Option {
	return func(o *Orchestrator) {
		o.builder = b
	}
}

// WithPatchApplier replaces the patch applier.
func WithPatchApplier(a PatchApplier) Option {
	return func(o *Orchestrator) {
		o.applier = a
	}
}

// WithChangeLister replaces changed-path discovery.
func WithChangeLister(l ChangeLister) Option {
	return func(o *Orchestrator) {
		o.lister = l
	}
}

// WithFilesystem sets the filesystem patch files are read from and written
// to. It must be rooted at "/". Defaults to the OS filesystem.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(o *Orchestrator) {
		o.fs = fs
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithMaxConcurrent bounds how many workflows run at once. Values below one
// are ignored.
func WithMaxConcurrent(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxConcurrent = n
		}
	}
}

// WithTaskTimeout limits each workflow's run time. Zero means no limit.
func WithTaskTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.taskTimeout = d
	}
}

// WithCompletionHandler registers a function called once for every finished
// task. Calls are serialized.
func WithCompletionHandler(h func(*Task)) Option {
	return func(o *Orchestrator) {
		o.onComplete = h
	}
}

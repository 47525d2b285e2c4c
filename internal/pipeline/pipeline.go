// Package pipeline implements the file operations behind sitewright tasks:
// cleaning the destination, copying matched files, and transforming sources,
// always preserving the source tree's relative path structure.
package pipeline

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sitewright/sitewright/internal/config"
	swerrors "github.com/sitewright/sitewright/internal/errors"
	"github.com/sitewright/sitewright/internal/logfields"
	"github.com/sitewright/sitewright/internal/metrics"
)

// Notifier receives a token after each completed build batch. The preview
// server's live-reload hub implements it; the token changes per batch so
// connected clients reload exactly once.
type Notifier interface {
	BuildCompleted(token string)
}

// Builder executes copy and transform batches from a source tree into a
// destination directory.
type Builder struct {
	source   string
	dest     string
	notifier Notifier
	recorder metrics.Recorder
}

// Option configures a Builder.
type Option func(*Builder)

// WithNotifier wires a live-reload notifier; batches notify it on completion.
func WithNotifier(n Notifier) Option {
	return func(b *Builder) { b.notifier = n }
}

// WithRecorder wires a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// NewBuilder creates a Builder rooted at source writing under dest.
func NewBuilder(source, dest string, opts ...Option) *Builder {
	b := &Builder{source: source, dest: dest, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Source returns the source root.
func (b *Builder) Source() string { return b.source }

// Dest returns the destination root.
func (b *Builder) Dest() string { return b.dest }

// Clean recursively removes the contents of the destination directory.
// Removing a missing or already-empty directory is not an error.
func (b *Builder) Clean(ctx context.Context) error {
	return Clean(b.dest)
}

// Clean removes all contents of dir, leaving dir itself in place when it
// exists. Idempotent.
func Clean(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityError, "read destination dir")
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityError, "remove destination entry")
		}
	}
	return nil
}

// Transform reads every source file matching glob, applies the transformer,
// and writes results under the destination preserving relative paths. It
// returns the number of files written. A completed batch notifies the
// configured live-reload notifier.
func (b *Builder) Transform(ctx context.Context, glob string, tr Transformer) (int, error) {
	matches, err := b.match(glob)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, rel := range matches {
		if err := ctx.Err(); err != nil {
			return written, swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityError, "transform canceled")
		}
		if err := b.transformOne(rel, tr); err != nil {
			return written, err
		}
		written++
	}

	b.recorder.AddFilesProcessed(written)
	slog.Info("batch completed", logfields.Glob(glob), logfields.Dest(b.dest), logfields.Files(written))
	b.notifyBatch()
	return written, nil
}

// Run executes every configured rule as one batch per rule.
func (b *Builder) Run(ctx context.Context, rules []config.Rule) (int, error) {
	total := 0
	for _, rule := range rules {
		n, err := b.Transform(ctx, rule.Glob, TransformerFor(rule.Transform))
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// TransformerFor maps a configured transform kind to its implementation.
func TransformerFor(kind config.TransformKind) Transformer {
	if kind == config.TransformMarkdown {
		return NewMarkdownTransformer()
	}
	return CopyTransformer{}
}

// transformOne applies tr to a single source file with all-or-nothing
// visibility: output lands in a temp file next to the target and is renamed
// into place only after a complete write.
func (b *Builder) transformOne(rel string, tr Transformer) error {
	src, err := os.ReadFile(filepath.Join(b.source, rel))
	if err != nil {
		return swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityError, "read source file").
			WithContext("path", rel)
	}

	out, err := tr.Transform(src)
	if err != nil {
		return swerrors.Wrap(err, swerrors.CategoryTransform, swerrors.SeverityError, "transform source file").
			WithContext("path", rel)
	}

	target := filepath.Join(b.dest, filepath.FromSlash(tr.OutputPath(rel)))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityError, "create destination dir")
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".sitewright-*")
	if err != nil {
		return swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityError, "create temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityError, "write destination file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityError, "close destination file")
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityError, "publish destination file")
	}
	return nil
}

// match walks the source tree and returns slash-separated relative paths of
// regular files matching the doublestar glob, in deterministic order.
func (b *Builder) match(glob string) ([]string, error) {
	if !doublestar.ValidatePattern(glob) {
		return nil, swerrors.ConfigError("invalid glob pattern").WithContext("glob", glob)
	}

	var matches []string
	err := filepath.WalkDir(b.source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.source, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		ok, err := doublestar.Match(glob, rel)
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, swerrors.ConfigError("source directory not found").WithContext("source", b.source)
		}
		return nil, swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityError, "walk source tree")
	}
	sort.Strings(matches)
	return matches, nil
}

func (b *Builder) notifyBatch() {
	if b.notifier == nil {
		return
	}
	b.notifier.BuildCompleted(time.Now().Format(time.RFC3339Nano))
	b.recorder.IncReloadBroadcast()
}

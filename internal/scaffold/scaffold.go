// Package scaffold creates new sitewright projects, either from the built-in
// skeleton or by cloning a starter template repository.
package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	swerrors "github.com/sitewright/sitewright/internal/errors"
)

// skeleton is the minimal source tree written by `sitewright init`.
var skeleton = map[string]string{
	"src/index.html": `<!doctype html>
<html>
  <head><title>sitewright</title></head>
  <body>
    <h1>It works</h1>
    <p>Edit files under src/ and watch this page reload.</p>
  </body>
</html>
`,
	"src/guide.md": `# Guide

Markdown sources are rendered to HTML in the destination tree.
`,
}

// WriteSkeleton writes the built-in starter source tree under dir. Existing
// files are left untouched.
func WriteSkeleton(dir string) error {
	for rel, content := range skeleton {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityFatal, "create skeleton dir")
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityFatal, "write skeleton file")
		}
	}
	return nil
}

// CloneTemplate clones a starter template repository into dir. The clone is
// shallow; the template's git history is not carried into the new project.
func CloneTemplate(ctx context.Context, templateURL, dir string) error {
	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		return swerrors.ConfigError("template target directory is not empty").WithContext("dir", dir)
	}

	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   templateURL,
		Depth: 1,
	})
	if err != nil {
		return swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityFatal,
			fmt.Sprintf("clone template %s", templateURL))
	}

	// The template's history is irrelevant to the new project.
	if err := os.RemoveAll(filepath.Join(dir, ".git")); err != nil {
		return swerrors.Wrap(err, swerrors.CategoryFileSystem, swerrors.SeverityError, "remove template git dir")
	}
	return nil
}

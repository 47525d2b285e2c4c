package pipeline

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	swerrors "github.com/sitewright/sitewright/internal/errors"
)

// Transformer converts one source file into its destination form.
type Transformer interface {
	// Transform converts source bytes. Malformed input is a transform error;
	// no output may be produced for that file.
	Transform(src []byte) ([]byte, error)
	// OutputPath maps a source-relative path to its destination-relative path.
	OutputPath(rel string) string
}

// CopyTransformer streams bytes unchanged.
type CopyTransformer struct{}

func (CopyTransformer) Transform(src []byte) ([]byte, error) { return src, nil }
func (CopyTransformer) OutputPath(rel string) string         { return rel }

// MarkdownTransformer renders Markdown sources to standalone HTML fragments.
type MarkdownTransformer struct {
	md goldmark.Markdown
}

// NewMarkdownTransformer builds a transformer with GitHub-flavored extensions.
func NewMarkdownTransformer() *MarkdownTransformer {
	return &MarkdownTransformer{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (t *MarkdownTransformer) Transform(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.md.Convert(src, &buf); err != nil {
		return nil, swerrors.Wrap(err, swerrors.CategoryTransform, swerrors.SeverityError, "render markdown")
	}
	return buf.Bytes(), nil
}

func (t *MarkdownTransformer) OutputPath(rel string) string {
	ext := filepath.Ext(rel)
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return strings.TrimSuffix(rel, ext) + ".html"
	}
	return rel
}

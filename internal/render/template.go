// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render produces the per-artifact HTML documents. A Template has
// named placeholders resolved from a Context, so output does not depend on
// the literal text of the template file.
package render

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed default.html
var defaultTemplate string

// Context holds the values substituted into a document.
type Context struct {
	// Title is "<collection name> #<index>".
	Title string

	// Width and Height are canvas pixel dimensions, substituted verbatim.
	Width  string
	Height string

	// ContentID references the shared rendering script.
	ContentID string

	// TraitIndex is the fixed-width trait-index string of the combination.
	TraitIndex string
}

// legacyPlaceholders maps the literal markers of the stock index.html
// skeleton to named placeholders.
var legacyPlaceholders = strings.NewReplacer(
	"<title>Your Collection Name 001</title>", "<title>{{.Title}}</title>",
	"width: 100vw;", "width: {{.Width}}px;",
	"height: 100vh;", "height: {{.Height}}px;",
	`<script src="/content/stitched_image.png"></script>`, `<script src="/content/{{.ContentID}}"></script>`,
	`<div id="traitindex">010101</div>`, `<div id="traitindex">{{.TraitIndex}}</div>`,
)

// Template is a parsed document template.
type Template struct {
	tmpl *template.Template
}

// Compile parses src. Literal markers of the stock skeleton are upgraded
// to named placeholders first, so unmodified legacy templates render the
// same way as templates written with placeholders.
func Compile(src string) (*Template, error) {
	t, err := template.New("document").Option("missingkey=error").Parse(legacyPlaceholders.Replace(src))
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &Template{tmpl: t}, nil
}

// Default returns the embedded document skeleton.
func Default() *Template {
	t, err := Compile(defaultTemplate)
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads and compiles the template at path. When the file does not
// exist it returns the embedded default and fromFile is false.
func Load(path string) (t *Template, fromFile bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), false, nil
		}
		return nil, false, fmt.Errorf("reading template %s: %w", path, err)
	}
	t, err = Compile(string(data))
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}
	return t, true, nil
}

// Render writes the document for ctx to w.
func (t *Template) Render(w io.Writer, ctx Context) error {
	if err := t.tmpl.Execute(w, ctx); err != nil {
		return fmt.Errorf("rendering document: %w", err)
	}
	return nil
}

// FileName returns the document file name for a 1-based sequential index,
// zero-padded to five digits (7 -> "00007.html").
func FileName(index int) string {
	return fmt.Sprintf("%05d.html", index)
}

// Title returns the display name "<name> #<index>" shared by documents and
// marketplace records.
func Title(name string, index int) string {
	return fmt.Sprintf("%s #%d", name, index)
}

// WriteDocument renders ctx into dir/FileName(index) through a temporary
// file that is renamed into place on success. It returns the final path.
func WriteDocument(dir string, index int, t *Template, ctx Context) (string, error) {
	dest := filepath.Join(dir, FileName(index))

	tmp, err := os.CreateTemp(dir, ".render-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	renderErr := t.Render(tmp, ctx)
	closeErr := tmp.Close()
	if renderErr != nil {
		os.Remove(tmpPath)
		return "", renderErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return dest, nil
}

// ValidContentID reports whether id carries the required suffix.
func ValidContentID(id, suffix string) bool {
	return id != "" && strings.HasSuffix(id, suffix)
}

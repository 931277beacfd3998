// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pngmeta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DefaultKey is the text keyword that carries the collection metadata.
const DefaultKey = "Metadata"

// Extract reads the text entry named key from the PNG at imagePath and
// writes it to outputPath as two-space indented JSON, keeping the key order
// of the embedded document. It returns false, with a nil error, when the
// image has no such entry.
func Extract(imagePath, outputPath, key string, w io.Writer) (bool, error) {
	if key == "" {
		key = DefaultKey
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return false, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	text, err := ReadText(f)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", imagePath, err)
	}

	raw, ok := text[key]
	if !ok {
		fmt.Fprintln(w, "No metadata found in the image.")
		return false, nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace([]byte(raw)), "", "  "); err != nil {
		return false, fmt.Errorf("parsing %s metadata as JSON: %w", key, err)
	}
	buf.WriteByte('\n')

	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", outputPath, err)
	}
	fmt.Fprintf(w, "Metadata saved to %s\n", outputPath)
	return true, nil
}

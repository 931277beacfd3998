// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pngmeta

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunk encodes one PNG chunk with its checksum.
func chunk(kind string, data []byte) []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.BigEndian, uint32(len(data)))
	b.WriteString(kind)
	b.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte(kind))
	crc.Write(data)
	binary.Write(&b, binary.BigEndian, crc.Sum32())
	return b.Bytes()
}

func compress(t *testing.T, s string) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := zlib.NewWriter(&b)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return b.Bytes()
}

// pngWith encodes a 1x1 image and inserts extra chunks before IEND.
func pngWith(t *testing.T, extra ...[]byte) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, img))

	encoded := b.Bytes()
	iend := len(encoded) - 12
	require.Equal(t, "IEND", string(encoded[iend+4:iend+8]))

	var out bytes.Buffer
	out.Write(encoded[:iend])
	for _, c := range extra {
		out.Write(c)
	}
	out.Write(encoded[iend:])
	return out.Bytes()
}

func textChunk(key, value string) []byte {
	return chunk("tEXt", append([]byte(key+"\x00"), value...))
}

func TestReadTextChunks(t *testing.T) {
	ztxt := append([]byte("Comment\x00\x00"), compress(t, "zipped")...)
	itxt := append([]byte("Title\x00\x01\x00en\x00Titel\x00"), compress(t, "héllo wörld")...)
	data := pngWith(t,
		textChunk("Metadata", `{"a":1}`),
		chunk("tEXt", []byte("Author\x00caf\xe9")),
		chunk("zTXt", ztxt),
		chunk("iTXt", itxt),
		chunk("iTXt", []byte("Plain\x00\x00\x00\x00\x00ünïcode")),
		textChunk("Metadata", `{"shadowed":true}`),
	)

	text, err := ReadText(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text["Metadata"], "first occurrence wins")
	assert.Equal(t, "café", text["Author"], "tEXt is Latin-1")
	assert.Equal(t, "zipped", text["Comment"])
	assert.Equal(t, "héllo wörld", text["Title"])
	assert.Equal(t, "ünïcode", text["Plain"])
}

func TestReadTextNoChunks(t *testing.T) {
	text, err := ReadText(bytes.NewReader(pngWith(t)))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestReadTextErrors(t *testing.T) {
	good := pngWith(t, textChunk("Metadata", "{}"))

	_, err := ReadText(strings.NewReader("GIF89a-not-png"))
	require.ErrorIs(t, err, ErrNotPNG)

	corrupt := bytes.Clone(good)
	// Flip a byte inside the first (IHDR) chunk payload.
	corrupt[len(signature)+9] ^= 0xff
	_, err = ReadText(bytes.NewReader(corrupt))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")

	_, err = ReadText(bytes.NewReader(pngWith(t, chunk("tEXt", []byte("\x00novalue")))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing keyword")

	_, err = ReadText(bytes.NewReader(good[:len(good)-20]))
	require.Error(t, err)
}

func TestReadTextOversizedChunkHeader(t *testing.T) {
	var in bytes.Buffer
	in.Write(signature)
	in.Write([]byte{0x7f, 0xff, 0xff, 0xff})
	in.WriteString("tEXt")
	in.WriteString("Metadata\x00{}")

	_, err := ReadText(&in)
	require.Error(t, err, "a declared length past the end of input fails once the data runs out")
	assert.ErrorIs(t, err, io.EOF)
}

func TestExtractWritesIndentedJSON(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "stitched_image.png")
	outputPath := filepath.Join(dir, "metadata.json")

	meta := `{"zeta":1,"alpha":{"layers":["Background","Body"]},"count":2}`
	require.NoError(t, os.WriteFile(imagePath, pngWith(t, textChunk("Metadata", meta)), 0o644))

	var log bytes.Buffer
	found, err := Extract(imagePath, outputPath, "", &log)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Contains(t, log.String(), "Metadata saved to "+outputPath)

	got, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	want := `{
  "zeta": 1,
  "alpha": {
    "layers": [
      "Background",
      "Body"
    ]
  },
  "count": 2
}
`
	assert.Equal(t, want, string(got))
}

func TestExtractMissingMetadata(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "plain.png")
	outputPath := filepath.Join(dir, "metadata.json")
	require.NoError(t, os.WriteFile(imagePath, pngWith(t, textChunk("Other", "{}")), 0o644))

	var log bytes.Buffer
	found, err := Extract(imagePath, outputPath, DefaultKey, &log)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "No metadata found in the image.\n", log.String())

	_, err = os.Stat(outputPath)
	assert.True(t, os.IsNotExist(err), "no output is written")
}

func TestExtractCustomKeyAndInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "img.png")
	require.NoError(t, os.WriteFile(imagePath, pngWith(t,
		textChunk("Traits", `[1, 2]`),
		textChunk("Broken", `{"a":`),
	), 0o644))

	out := filepath.Join(dir, "traits.json")
	found, err := Extract(imagePath, out, "Traits", &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, found)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "[\n  1,\n  2\n]\n", string(got))

	_, err = Extract(imagePath, filepath.Join(dir, "broken.json"), "Broken", &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing Broken metadata as JSON")
}

func TestExtractMissingImage(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "none.png"), "out.json", "", &bytes.Buffer{})
	require.Error(t, err)
}

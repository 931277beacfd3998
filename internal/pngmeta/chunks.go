// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pngmeta reads the textual metadata chunks embedded in PNG files
// and extracts a JSON document stored under one keyword.
package pngmeta

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"golang.org/x/text/encoding/charmap"
)

// signature is the 8-byte PNG file header.
var signature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// maxChunkLen bounds a single chunk; the PNG format caps lengths at 2^31-1.
const maxChunkLen = 1<<31 - 1

// ErrNotPNG is returned when the input does not start with the PNG signature.
var ErrNotPNG = errors.New("not a PNG file")

// ReadText returns every tEXt, zTXt, and iTXt entry in r, keyed by
// keyword. When a keyword repeats, the first occurrence wins. tEXt and
// zTXt payloads are Latin-1 and are converted to UTF-8.
func ReadText(r io.Reader) (map[string]string, error) {
	header := make([]byte, len(signature))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("reading signature: %w", err)
	}
	if !bytes.Equal(header, signature) {
		return nil, ErrNotPNG
	}

	text := make(map[string]string)
	var lenBuf [8]byte
	for {
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if errors.Is(err, io.EOF) {
				// Truncated after the last complete chunk; keep what we have.
				return text, nil
			}
			return nil, fmt.Errorf("reading chunk header: %w", err)
		}
		length := binary.BigEndian.Uint32(lenBuf[:4])
		if length > maxChunkLen {
			return nil, fmt.Errorf("chunk length %d exceeds limit", length)
		}
		kind := string(lenBuf[4:8])

		// Only text chunks are kept; the rest are checksummed as they stream
		// past. The buffer grows with the bytes actually read, not with the
		// declared length.
		crc := crc32.NewIEEE()
		crc.Write(lenBuf[4:8])
		var buf bytes.Buffer
		dst := io.Writer(crc)
		if isTextChunk(kind) {
			dst = io.MultiWriter(crc, &buf)
		}
		if _, err := io.CopyN(dst, r, int64(length)); err != nil {
			return nil, fmt.Errorf("reading %s chunk: %w", kind, err)
		}
		data := buf.Bytes()

		var crcBuf [4]byte
		if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
			return nil, fmt.Errorf("reading %s checksum: %w", kind, err)
		}
		if crc.Sum32() != binary.BigEndian.Uint32(crcBuf[:]) {
			return nil, fmt.Errorf("%s chunk: checksum mismatch", kind)
		}

		var (
			key, value string
			err        error
		)
		switch kind {
		case "tEXt":
			key, value, err = decodeText(data)
		case "zTXt":
			key, value, err = decodeCompressedText(data)
		case "iTXt":
			key, value, err = decodeInternationalText(data)
		case "IEND":
			return text, nil
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s chunk: %w", kind, err)
		}
		if _, seen := text[key]; !seen {
			text[key] = value
		}
	}
}

func isTextChunk(kind string) bool {
	return kind == "tEXt" || kind == "zTXt" || kind == "iTXt"
}

func latin1(b []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// splitKeyword separates the null-terminated keyword from the rest.
func splitKeyword(data []byte) (string, []byte, error) {
	i := bytes.IndexByte(data, 0)
	if i < 1 {
		return "", nil, errors.New("missing keyword")
	}
	key, err := latin1(data[:i])
	if err != nil {
		return "", nil, err
	}
	return key, data[i+1:], nil
}

func decodeText(data []byte) (string, string, error) {
	key, rest, err := splitKeyword(data)
	if err != nil {
		return "", "", err
	}
	value, err := latin1(rest)
	return key, value, err
}

func decodeCompressedText(data []byte) (string, string, error) {
	key, rest, err := splitKeyword(data)
	if err != nil {
		return "", "", err
	}
	if len(rest) < 1 || rest[0] != 0 {
		return "", "", errors.New("unsupported compression method")
	}
	raw, err := inflate(rest[1:])
	if err != nil {
		return "", "", err
	}
	value, err := latin1(raw)
	return key, value, err
}

func decodeInternationalText(data []byte) (string, string, error) {
	key, rest, err := splitKeyword(data)
	if err != nil {
		return "", "", err
	}
	if len(rest) < 2 {
		return "", "", errors.New("truncated header")
	}
	compressed, method := rest[0] == 1, rest[1]
	rest = rest[2:]
	// Skip the language tag and translated keyword.
	for range 2 {
		i := bytes.IndexByte(rest, 0)
		if i < 0 {
			return "", "", errors.New("truncated header")
		}
		rest = rest[i+1:]
	}
	if !compressed {
		return key, string(rest), nil
	}
	if method != 0 {
		return "", "", errors.New("unsupported compression method")
	}
	raw, err := inflate(rest)
	if err != nil {
		return "", "", err
	}
	return key, string(raw), nil
}

func inflate(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	return out, nil
}

// Package encoding provides text decoding for OMSI file formats.
//
// CFG, SCO, MAP and SLI files as well as the string fields of O3D containers
// are Windows-1252 by default. Real-world files are frequently mislabelled or
// hand-edited, so decoding must never fail: undecodable input falls back to
// UTF-8 and individually bad bytes are replaced.
package encoding

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Name identifies a supported text encoding.
type Name string

// Supported encodings.
const (
	Windows1252 Name = "windows-1252"
	UTF8        Name = "utf-8"
)

// DecodeText converts raw file bytes to a UTF-8 string using the requested
// encoding. If the input decodes cleanly as UTF-8 it is preferred over a
// Windows-1252 interpretation, mirroring the fallback behaviour of the file
// producers; otherwise bad runes are replaced, never reported as an error.
func DecodeText(data []byte, enc Name) string {
	if enc == UTF8 || utf8.Valid(data) {
		return string(bytes.ToValidUTF8(data, []byte("�")))
	}
	decoder := charmap.Windows1252.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		// Windows-1252 is a full single-byte map, so this is unreachable in
		// practice; replace rune-by-rune as a last resort.
		return string(bytes.ToValidUTF8(data, []byte("�")))
	}
	return string(result)
}

// DecodeCP1252 converts Windows-1252 bytes to a UTF-8 string.
// Returns ok=false when the bytes cannot be mapped; callers substitute an
// empty name rather than failing (O3D material texture names).
func DecodeCP1252(data []byte) (string, bool) {
	decoder := charmap.Windows1252.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", false
	}
	return string(result), true
}

// EncodeCP1252 converts a UTF-8 string to Windows-1252 bytes.
// Unmappable runes are replaced with '?'.
func EncodeCP1252(s string) []byte {
	encoder := charmap.Windows1252.NewEncoder()
	result, _, err := transform.Bytes(encoder, []byte(s))
	if err != nil {
		var b strings.Builder
		for _, r := range s {
			if e, ok := charmap.Windows1252.EncodeRune(r); ok {
				b.WriteByte(e)
			} else {
				b.WriteByte('?')
			}
		}
		return []byte(b.String())
	}
	return result
}

// NormalizeKey normalizes a texture or mesh path for case-insensitive lookup.
// OMSI assets come from case-insensitive filesystems with mixed separators.
func NormalizeKey(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.ToLower(path)
}

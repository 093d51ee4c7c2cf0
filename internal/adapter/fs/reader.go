// Package fs loads source text files, tolerating the legacy encodings legal
// corpora commonly arrive in.
package fs

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"

	"lawrag/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// fallbacks are tried in order when the bytes are not valid UTF-8. GB2312 is
// a subset of GBK, so the chain covers the encodings the corpus shows up in.
var fallbacks = []encoding.Encoding{
	simplifiedchinese.GBK,
	simplifiedchinese.GB18030,
}

// ReadTextFile reads path as UTF-8, falling back to GBK and GB18030 when the
// content does not decode. Returns a DecodeError when every encoding fails;
// the caller skips only that file.
func ReadTextFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DecodeText(raw, path)
}

// DecodeText decodes raw bytes with the UTF-8-first fallback chain. path is
// only used for error reporting.
func DecodeText(raw []byte, path string) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	for _, enc := range fallbacks {
		decoded, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		// x/text decoders substitute U+FFFD instead of failing; treat any
		// replacement rune as a wrong-encoding signal and try the next one.
		if strings.ContainsRune(string(decoded), utf8.RuneError) {
			continue
		}
		return string(decoded), nil
	}
	return "", &domain.DecodeError{Path: path}
}

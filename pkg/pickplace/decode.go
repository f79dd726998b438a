package pickplace

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names reported in Result.Encoding.
const (
	EncodingUTF8BOM     = "utf-8-bom"
	EncodingUTF16       = "utf-16"
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingLatin1      = "iso-8859-1"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// cp1252Undefined are the bytes Windows-1252 leaves unassigned. A file
// containing one of them is not Windows-1252 text.
var cp1252Undefined = []byte{0x81, 0x8D, 0x8F, 0x90, 0x9D}

// decodeText converts raw file bytes to UTF-8. Candidates are tried in
// order: UTF-8 with BOM, UTF-16 with BOM, plain UTF-8, Windows-1252 and
// finally ISO-8859-1, which accepts any byte sequence.
func decodeText(raw []byte) (string, string, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return string(raw[len(bomUTF8):]), EncodingUTF8BOM, nil
	case bytes.HasPrefix(raw, bomUTF16LE), bytes.HasPrefix(raw, bomUTF16BE):
		s, err := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), raw)
		return s, EncodingUTF16, err
	case utf8.Valid(raw):
		return string(raw), EncodingUTF8, nil
	case !containsAny(raw, cp1252Undefined):
		s, err := decodeWith(charmap.Windows1252, raw)
		if err == nil {
			return s, EncodingWindows1252, nil
		}
	}
	s, err := decodeWith(charmap.ISO8859_1, raw)
	return s, EncodingLatin1, err
}

func decodeWith(enc encoding.Encoding, raw []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func containsAny(raw, set []byte) bool {
	for _, b := range set {
		if bytes.IndexByte(raw, b) >= 0 {
			return true
		}
	}
	return false
}

package stats

import (
	"bytes"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

var charsetRule = []byte(`@charset "`)

// declaredCharset returns encoding stylesheet declares for itself with
// UTF-16 byte order mark or @charset rule at the very beginning of the
// file. Nil is returned for UTF-8 and when nothing usable is declared.
// @charset naming UTF-16 is ignored, such a rule could not be read as ASCII
// in the first place.
func declaredCharset(raw []byte) (encoding.Encoding, string) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), "utf-16be"
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), "utf-16le"
	case !bytes.HasPrefix(raw, charsetRule):
		return nil, ""
	}

	label, _, ok := bytes.Cut(raw[len(charsetRule):], []byte(`";`))
	if !ok || len(label) == 0 || len(label) > 64 {
		return nil, ""
	}
	enc, name := charset.Lookup(string(label))
	switch name {
	case "", "utf-8", "utf-16be", "utf-16le":
		return nil, ""
	}
	return enc, name
}

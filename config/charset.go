package config

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// LookupCharset finds decoder for IANA character set name.
func LookupCharset(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown character set %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("character set %q is not supported", name)
	}
	return enc, nil
}

// CharsetName returns canonical IANA name of enc.
func CharsetName(enc encoding.Encoding) string {
	if enc == nil {
		return "UTF-8"
	}
	if n, err := ianaindex.IANA.Name(enc); err == nil {
		return n
	}
	return fmt.Sprint(enc)
}

// Package strutil holds the string helpers used by the shell and the
// status displays: charset conversion, terminal column counting, size
// formatting, argument splitting and the base32 form of hash roots.
package strutil

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

const encodingError = "<encoding-error>"

// Charset returns the encoding registered under name. IANA names are tried
// first, then WHATWG labels such as "cp1252" or "latin1".
func Charset(name string) (encoding.Encoding, error) {
	if e, err := ianaindex.IANA.Encoding(name); err == nil && e != nil {
		return e, nil
	}
	e, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, "Unknown charset %v", name)
	}
	return e, nil
}

// Convert converts s from one charset to another. It never fails on the
// input: bytes that cannot be decoded and characters that cannot be
// encoded are replaced with '?'. If either charset is unknown the result
// is "<encoding-error>".
func Convert(to, from, s string) string {
	src, err := Charset(from)
	if err != nil {
		log.WithError(err).Errorf("No conversion from %v to %v", from, to)
		return encodingError
	}
	dst, err := Charset(to)
	if err != nil {
		log.WithError(err).Errorf("No conversion from %v to %v", from, to)
		return encodingError
	}
	u, err := src.NewDecoder().String(s)
	if err != nil {
		u = strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	enc := dst.NewEncoder()
	if !strings.ContainsRune(u, utf8.RuneError) {
		if out, err := enc.String(u); err == nil {
			return out
		}
	}
	var b strings.Builder
	b.Grow(len(u))
	for _, r := range u {
		if r == utf8.RuneError {
			b.WriteByte('?')
			continue
		}
		out, err := enc.String(string(r))
		if err != nil {
			b.WriteByte('?')
			continue
		}
		b.WriteString(out)
	}
	return b.String()
}

// ConvertCheck tests that text can be converted from UTF-8 to charset and
// back. Charsets that encode ASCII with NUL bytes (UTF-16, UTF-32) are
// rejected since the rest of the client treats strings as NUL-free.
func ConvertCheck(charset string) error {
	e, err := Charset(charset)
	if err != nil {
		return err
	}
	const probe = "abc"
	enc, err := e.NewEncoder().String(probe)
	if err != nil {
		return errors.Wrapf(err, "Failed to encode to %v", charset)
	}
	if len(enc) != len(probe) || strings.IndexByte(enc, 0) >= 0 {
		return errors.Errorf("Charset %v is not ASCII compatible", charset)
	}
	dec, err := e.NewDecoder().String(enc)
	if err != nil {
		return errors.Wrapf(err, "Failed to decode from %v", charset)
	}
	if dec != probe {
		return errors.Errorf("Charset %v does not round-trip", charset)
	}
	return nil
}

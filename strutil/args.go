package strutil

import (
	"strings"

	"github.com/pkg/errors"
)

// Arg2Split splits a command line of the form "<first> <rest>". first is
// shell quoted and is returned unquoted; spaces inside quotes or escaped
// with a backslash do not end it. rest is returned verbatim without its
// leading spaces. An error is returned only when no prefix of s unquotes
// cleanly.
func Arg2Split(s string) (first, rest string, err error) {
	s = strings.TrimLeft(s, " ")
	if s == "" {
		return "", "", nil
	}
	sep := 0
	for {
		i := strings.IndexByte(s[sep+1:], ' ')
		if i < 0 {
			first, err = ShellUnquote(s)
			return first, "", err
		}
		sep += 1 + i
		if s[sep-1] == '\\' {
			continue
		}
		if first, err = ShellUnquote(s[:sep]); err == nil {
			return first, strings.TrimLeft(s[sep+1:], " "), nil
		}
	}
}

// ShellUnquote removes shell quoting from s following POSIX sh rules for
// single quotes, double quotes and backslash escapes.
func ShellUnquote(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			i++
			if i == len(s) {
				b.WriteByte('\\')
				break
			}
			if s[i] != '\n' {
				b.WriteByte(s[i])
			}
		case '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				return "", errors.Errorf("Unmatched single quote in %q", s)
			}
			b.WriteString(s[i+1 : i+1+end])
			i += 1 + end
		case '"':
			i++
			for ; i < len(s) && s[i] != '"'; i++ {
				if s[i] == '\\' && i+1 < len(s) && strings.IndexByte("$`\"\\\n", s[i+1]) >= 0 {
					i++
					if s[i] == '\n' {
						continue
					}
				}
				b.WriteByte(s[i])
			}
			if i == len(s) {
				return "", errors.Errorf("Unmatched double quote in %q", s)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// ShellEscape backslash-escapes the characters of s that ShellUnquote or
// Arg2Split would otherwise interpret, so that ShellUnquote(ShellEscape(s))
// is s.
func ShellEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(" \t\\'\"$`", s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// ShellUnquotePrefix unquotes a partially typed word, closing a quote that
// is still open.
func ShellUnquotePrefix(s string) (string, error) {
	u, err := ShellUnquote(s)
	if err == nil {
		return u, nil
	}
	for _, q := range []string{`"`, `'`} {
		if u, qerr := ShellUnquote(s + q); qerr == nil {
			return u, nil
		}
	}
	return "", err
}

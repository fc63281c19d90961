// Package pathutil expands and completes filesystem paths typed into the
// command shell.
package pathutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// MaxSuggestions caps the number of completions returned by Suggest.
const MaxSuggestions = 20

// Expand resolves p to an absolute path with symlinks evaluated. A leading
// "~" is replaced by the home directory. The path must exist.
func Expand(p string) (string, error) {
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "Failed to get home directory")
		}
		p = filepath.Join(home, p[1:])
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to get absolute path of %v", p)
	}
	r, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to resolve %v", abs)
	}
	return r, nil
}

// Suggest returns up to MaxSuggestions completions of p, sorted.
// Directories carry a trailing slash. "~", "~/", "." and "./" complete to
// the directory they name.
func Suggest(p string) []string {
	switch p {
	case "~", "~/", ".", "./":
		dir, err := Expand(p)
		if err != nil {
			return nil
		}
		return []string{withSlash(dir)}
	}
	var dir, name string
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		name = p[i+1:]
		d := p[:i]
		if d == "" {
			d = "/"
		}
		var err error
		if dir, err = Expand(d); err != nil {
			return nil
		}
	} else {
		name = p
		var err error
		if dir, err = Expand("."); err != nil {
			return nil
		}
	}
	f, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer f.Close()

	var sug []string
	for len(sug) < MaxSuggestions {
		names, err := f.Readdirnames(MaxSuggestions)
		for _, n := range names {
			if len(sug) == MaxSuggestions {
				break
			}
			if !strings.HasPrefix(n, name) || n == name {
				continue
			}
			fn := filepath.Join(dir, n)
			if fi, err := os.Stat(fn); err == nil && fi.IsDir() {
				fn = withSlash(fn)
			}
			sug = append(sug, fn)
		}
		if err != nil {
			break
		}
	}
	sort.Strings(sug)
	return sug
}

func withSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webtor-io/dc-progress/conf"
	"github.com/webtor-io/dc-progress/ratecalc"
	"github.com/webtor-io/dc-progress/strutil"
)

func newTestShell(t *testing.T) *Shell {
	c, err := conf.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return New(c, ratecalc.NewRegistry())
}

func exec(t *testing.T, s *Shell, line string) string {
	var out bytes.Buffer
	require.NoError(t, s.Exec(line, &out), line)
	return out.String()
}

func TestExecStrings(t *testing.T) {
	s := newTestShell(t)
	assert.Equal(t, "4\n", exec(t, s, "width 日本"))
	assert.Equal(t, "\"caf\\xe9\"\n", exec(t, s, "convert ISO-8859-1 café"))
	assert.Equal(t, "1.50 MiB\n", exec(t, s, "size 1572864"))
	assert.Equal(t, "UTF-8 is usable\n", exec(t, s, "check UTF-8"))
}

func TestExecBase32(t *testing.T) {
	s := newTestShell(t)
	hexHash := strings.Repeat("00", 24)
	b32 := strings.TrimSpace(exec(t, s, "b32 "+hexHash))
	assert.Equal(t, strings.Repeat("A", 39), b32)
	assert.Equal(t, hexHash+"\n", exec(t, s, "unb32 "+b32))

	assert.Error(t, s.Exec("b32 00ff", &bytes.Buffer{}))
}

func TestExecSettings(t *testing.T) {
	s := newTestShell(t)
	assert.Equal(t, "slots = 3\n", exec(t, s, "set slots 3"))
	assert.Equal(t, 3, s.conf.Slots())
	assert.Equal(t, "share_hidden = true\n", exec(t, s, "set share_hidden yes"))
	assert.Equal(t, "myhub.share_hidden = false\n", exec(t, s, "set myhub.share_hidden off"))
	assert.Equal(t, "myhub.slots = 3\n", exec(t, s, "get myhub.slots"), "falls back to global")
	assert.Equal(t, "description = my files\n", exec(t, s, `set description my files`))
	assert.Equal(t, "slots reset\n", exec(t, s, "set slots"))
	assert.Equal(t, "slots is not set\n", exec(t, s, "get slots"))
}

func TestExecHash(t *testing.T) {
	s := newTestShell(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "with space")
	require.NoError(t, os.WriteFile(p, []byte("data"), 0644))

	out := exec(t, s, `hash "`+p+`"`)
	fields := strings.Fields(out)
	require.NotEmpty(t, fields)
	assert.Len(t, fields[0], 39)
}

func TestExecErrors(t *testing.T) {
	s := newTestShell(t)
	assert.Error(t, s.Exec("nope", &bytes.Buffer{}))
	assert.Equal(t, ErrQuit, s.Exec("quit", &bytes.Buffer{}))
	assert.NoError(t, s.Exec("   ", &bytes.Buffer{}))
}

func TestComplete(t *testing.T) {
	s := newTestShell(t)
	assert.Equal(t, []string{"check ", "convert "}, s.Complete("c"))
	assert.Equal(t, []string{"hash ", "help "}, s.Complete("H"))
	assert.Nil(t, s.Complete("width x"))

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	assert.Equal(t, []string{"expand " + filepath.Join(dir, "sub") + "/"}, s.Complete("expand "+dir+"/s"))
}

func TestCompletePathWithSpace(t *testing.T) {
	s := newTestShell(t)
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	sub := filepath.Join(dir, "my dir")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "it's.bin"), []byte("x"), 0644))

	prefix := strutil.ShellEscape(dir)
	want := []string{"expand " + prefix + `/my\ dir/`}
	assert.Equal(t, want, s.Complete("expand "+prefix+"/my"))
	assert.Equal(t, want, s.Complete(`expand "`+dir+`/my d`), "open quote")
	assert.Equal(t, want, s.Complete("expand "+prefix+`/my\ d`))

	assert.Equal(t, sub+"\n", exec(t, s, want[0]))

	files := s.Complete(want[0] + "i")
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(sub, "it's.bin")+"\n", exec(t, s, files[0]))

	files = s.Complete("hash " + strings.TrimPrefix(want[0], "expand ") + "i")
	require.Len(t, files, 1)
	assert.Len(t, strings.Fields(exec(t, s, files[0]))[0], 39)
}

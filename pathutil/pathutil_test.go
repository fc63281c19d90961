package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempTree(t *testing.T) string {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "music"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "movie.mkv"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mu"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other"), nil, 0644))
	return dir
}

func TestExpand(t *testing.T) {
	dir := tempTree(t)
	p, err := Expand(filepath.Join(dir, "music", "..", "mu"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mu"), p)

	_, err = Expand(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home := tempTree(t)
	t.Setenv("HOME", home)
	p, err := Expand("~/music")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "music"), p)
}

func TestSuggest(t *testing.T) {
	dir := tempTree(t)
	sug := Suggest(dir + "/m")
	assert.Equal(t, []string{
		filepath.Join(dir, "movie.mkv"),
		filepath.Join(dir, "mu"),
		filepath.Join(dir, "music") + "/",
	}, sug)

	// an exact match is not offered as its own completion
	assert.Equal(t, []string{filepath.Join(dir, "music") + "/"}, Suggest(dir+"/mu"))
	assert.Empty(t, Suggest(dir+"/zzz"))
	assert.Empty(t, Suggest(dir+"/nodir/x"))
}

func TestSuggestSpecial(t *testing.T) {
	home := tempTree(t)
	t.Setenv("HOME", home)
	assert.Equal(t, []string{home + "/"}, Suggest("~"))
	assert.Equal(t, []string{home + "/"}, Suggest("~/"))
}

func TestSuggestLimit(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 30; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%02d", i)), nil, 0644))
	}
	assert.Len(t, Suggest(dir+"/f"), MaxSuggestions)
}

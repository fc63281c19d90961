package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webtor-io/dc-progress/ratecalc"
	"github.com/webtor-io/dc-progress/strutil"
	"lukechampine.com/blake3"
)

func TestHashFile(t *testing.T) {
	data := bytes.Repeat([]byte("dc-progress"), 50000)
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, data, 0644))

	reg := ratecalc.NewRegistry()
	h := NewHasher(reg)
	var e ratecalc.Entity
	root, err := h.HashFile(context.Background(), path, &e)
	require.NoError(t, err)

	var want [strutil.HashSize]byte
	hh := blake3.New(strutil.HashSize, nil)
	hh.Write(data)
	copy(want[:], hh.Sum(nil))
	assert.Equal(t, strutil.Base32Encode(want), root)
	assert.Len(t, root, strutil.Base32Size)

	assert.False(t, e.Registered(), "entity is released when the job ends")
	assert.Equal(t, 0, reg.Len())
}

func TestHashCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := NewHasher(ratecalc.NewRegistry())
	var e ratecalc.Entity
	_, err := h.HashReader(ctx, bytes.NewReader([]byte("x")), &e)
	assert.Error(t, err)
}

func TestHashMissingFile(t *testing.T) {
	h := NewHasher(ratecalc.NewRegistry())
	var e ratecalc.Entity
	_, err := h.HashFile(context.Background(), filepath.Join(t.TempDir(), "nope"), &e)
	assert.Error(t, err)
}

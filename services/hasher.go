package services

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/webtor-io/dc-progress/ratecalc"
	"github.com/webtor-io/dc-progress/strutil"
	"lukechampine.com/blake3"
)

const hashBufSize = 128 << 10

// Hasher computes 24 byte BLAKE3 roots of files. Every job is measured by
// a rate entity that stays registered while the job runs.
type Hasher struct {
	reg *ratecalc.Registry
}

func NewHasher(reg *ratecalc.Registry) *Hasher {
	return &Hasher{
		reg: reg,
	}
}

// HashReader hashes r and returns the base32 root. Progress goes to e.
func (s *Hasher) HashReader(ctx context.Context, r io.Reader, e *ratecalc.Entity) (string, error) {
	e.Init()
	s.reg.Register(e)
	defer s.reg.Unregister(e)

	h := blake3.New(strutil.HashSize, nil)
	buf := make([]byte, hashBufSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrap(err, "Hashing cancelled")
		}
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			e.Add(int64(n))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrap(err, "Failed to read")
		}
	}
	var root [strutil.HashSize]byte
	copy(root[:], h.Sum(nil))
	return strutil.Base32Encode(root), nil
}

// HashFile hashes the file at path.
func (s *Hasher) HashFile(ctx context.Context, path string, e *ratecalc.Entity) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to open %v", path)
	}
	defer f.Close()
	root, err := s.HashReader(ctx, f, e)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to hash %v", path)
	}
	return root, nil
}

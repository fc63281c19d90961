package services

import (
	"bufio"
	"net"
	"net/http"

	"github.com/pkg/errors"
)

type Writer struct {
	http.ResponseWriter
	statusCode int
	sp         *StatPool
	id         string
}

func NewWriter(id string, sp *StatPool, w http.ResponseWriter) *Writer {
	return &Writer{
		statusCode:     http.StatusOK,
		ResponseWriter: w,
		sp:             sp,
		id:             id,
	}
}

func (w *Writer) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *Writer) Write(p []byte) (int, error) {
	s := w.sp.Get(w.id)
	n, err := w.ResponseWriter.Write(p)
	s.Inc(int64(n))
	s.SetStatus(Active)
	return n, err
}

// Error marks the transfer as finished, failed if err is not nil.
func (w *Writer) Error(err error) {
	s := w.sp.Get(w.id)
	if err != nil {
		s.SetStatus(Failed)
		return
	}
	s.SetStatus(Done)
}

func (w *Writer) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("type assertion failed http.ResponseWriter not a http.Hijacker")
	}
	return h.Hijack()
}

func (w *Writer) Flush() {
	f, ok := w.ResponseWriter.(http.Flusher)
	if !ok {
		return
	}

	f.Flush()
}

// Check interface implementations.
var (
	_ http.ResponseWriter = &Writer{}
	_ http.Hijacker       = &Writer{}
	_ http.Flusher        = &Writer{}
)

type WriterPool struct {
	sp *StatPool
}

func NewWriterPool(sp *StatPool) *WriterPool {
	return &WriterPool{
		sp: sp,
	}
}

// Get starts (or restarts) the transfer id. A restarted transfer begins
// with nothing downloaded and a fresh rate. A negative length means it is unknown.
func (s *WriterPool) Get(id string, w http.ResponseWriter, length int64) *Writer {
	if length < 0 {
		length = 0
	}
	st := s.sp.Get(id)
	if st.Status() != Pending {
		st.restart()
	}
	st.SetStatus(Pending)
	st.SetLength(length)
	return NewWriter(id, s.sp, w)
}

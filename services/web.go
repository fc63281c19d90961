package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/webtor-io/dc-progress/strutil"
)

const (
	webHostFlag  = "host"
	webPortFlag  = "port"
	webSourceURL = "source-url"
)

type Web struct {
	host      string
	port      int
	ln        net.Listener
	cl        *http.Client
	wp        *WriterPool
	sp        *StatPool
	sourceURL string
}

func NewWeb(c *cli.Context, cl *http.Client, wp *WriterPool, sp *StatPool) *Web {
	return &Web{
		host:      c.String(webHostFlag),
		port:      c.Int(webPortFlag),
		sourceURL: c.String(webSourceURL),
		cl:        cl,
		wp:        wp,
		sp:        sp,
	}
}

func RegisterWebFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   webHostFlag,
			Usage:  "listening host",
			Value:  "",
			EnvVar: "WEB_HOST",
		},
		cli.IntFlag{
			Name:   webPortFlag,
			Usage:  "http listening port",
			Value:  8080,
			EnvVar: "WEB_PORT",
		},
		cli.StringFlag{
			Name:   webSourceURL,
			Usage:  "source url",
			Value:  "",
			EnvVar: "SOURCE_URL",
		},
	)
}

type StatJSON struct {
	ID         string `json:"id"`
	Downloaded int64  `json:"downloaded"`
	Length     int64  `json:"length"`
	Status     string `json:"status"`
	Rate       int64  `json:"rate"`
	AvgRate    int64  `json:"avg_rate"`
	RateHuman  string `json:"rate_human"`
}

func statJSON(id string, st *Stat) StatJSON {
	r := st.Rate()
	return StatJSON{
		ID:         id,
		Downloaded: st.Downloaded(),
		Length:     st.Length(),
		Status:     st.Status().String(),
		Rate:       r,
		AvgRate:    st.AvgRate(),
		RateHuman:  strutil.FormatSize(uint64(r)) + "/s",
	}
}

func (s *Web) getSourceURL(r *http.Request) string {
	if s.sourceURL != "" {
		return s.sourceURL
	}
	return r.Header.Get("X-Source-Url")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to write json")
	}
}

func (s *Web) proxy(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("download-id")
	if id == "" {
		log.Errorf("Failed to find download-id url=%v", r.URL.String())
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	src := s.getSourceURL(r)
	if src == "" {
		log.Errorf("Failed to find source url for download-id=%v", id)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	res, err := s.cl.Get(src)
	if err != nil {
		log.WithError(err).Errorf("Failed to get url=%v", src)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer res.Body.Close()
	wi := s.wp.Get(id, w, res.ContentLength)
	for k, v := range res.Header {
		wi.Header()[k] = v
	}
	wi.WriteHeader(res.StatusCode)
	_, err = io.Copy(wi, res.Body)
	if err != nil {
		log.WithError(err).Errorf("Failed to copy download-id=%v", id)
	}
	wi.Error(err)
}

func (s *Web) stat(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("download-id")
	st := s.sp.GetIfExists(id)
	if st == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, statJSON(id, st))
}

func (s *Web) stats(w http.ResponseWriter, r *http.Request) {
	res := []StatJSON{}
	s.sp.Each(func(id string, st *Stat) {
		res = append(res, statJSON(id, st))
	})
	writeJSON(w, res)
}

func (s *Web) Handler() http.Handler {
	m := http.NewServeMux()
	m.HandleFunc("/", s.proxy)
	m.HandleFunc("/stat", s.stat)
	m.HandleFunc("/stats", s.stats)
	return m
}

func (s *Web) Serve() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "Failed to web listen to tcp connection")
	}
	s.ln = ln
	log.Infof("Serving Web at %v", addr)
	return http.Serve(s.ln, s.Handler())
}

func (s *Web) Close() {
	log.Info("Closing Web")
	defer func() {
		log.Info("Web closed")
	}()
	if s.ln != nil {
		s.ln.Close()
	}
}

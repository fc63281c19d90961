package services

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/golang/protobuf/ptypes/empty"
	structpb "github.com/golang/protobuf/ptypes/struct"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	grpcHostFlag = "grpc-host"
	grpcPortFlag = "grpc-port"
)

func RegisterGRPCFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   grpcHostFlag,
			Usage:  "grpc listening host",
			Value:  "",
			EnvVar: "GRPC_HOST",
		},
		cli.IntFlag{
			Name:   grpcPortFlag,
			Usage:  "grpc listening port",
			Value:  50051,
			EnvVar: "GRPC_PORT",
		},
	)
}

type GRPC struct {
	UnimplementedRateStatServer
	host     string
	port     int
	ln       net.Listener
	sp       *StatPool
	interval time.Duration
}

func NewGRPC(c *cli.Context, sp *StatPool) *GRPC {
	return &GRPC{
		host:     c.String(grpcHostFlag),
		port:     c.Int(grpcPortFlag),
		sp:       sp,
		interval: time.Second,
	}
}

func numberValue(v int64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: float64(v)}}
}

func stringValue(v string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: v}}
}

func statReply(st *Stat) *structpb.Struct {
	if st == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{
			"downloaded": numberValue(0),
			"status":     stringValue("not_started"),
			"rate":       numberValue(0),
			"avg_rate":   numberValue(0),
			"length":     numberValue(0),
		}}
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"downloaded": numberValue(st.Downloaded()),
		"status":     stringValue(st.Status().String()),
		"rate":       numberValue(st.Rate()),
		"avg_rate":   numberValue(st.AvgRate()),
		"length":     numberValue(st.Length()),
	}}
}

func (s *GRPC) Stat(ctx context.Context, r *empty.Empty) (*structpb.Struct, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	if len(md.Get("download-id")) == 0 || md.Get("download-id")[0] == "" {
		return nil, errors.Errorf("No download id provided")
	}
	downloadID := md.Get("download-id")[0]
	return statReply(s.sp.GetIfExists(downloadID)), nil
}

func finished(rep *structpb.Struct) bool {
	st := rep.GetFields()["status"].GetStringValue()
	return st == Done.String() || st == Failed.String()
}

func (s *GRPC) StatStream(r *empty.Empty, ss RateStat_StatStreamServer) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ss.Context().Done():
			return errors.Wrapf(ss.Context().Err(), "Got context error")
		case <-ticker.C:
		}
		rep, err := s.Stat(ss.Context(), r)
		if err != nil {
			return errors.Wrapf(err, "Failed to get stat")
		}
		err = ss.Send(rep)
		if err != nil {
			return errors.Wrapf(err, "Failed to send stat")
		}
		if finished(rep) {
			return nil
		}
	}
}

func (s *GRPC) Serve() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "Failed to listen to tcp connection")
	}
	s.ln = ln
	var opts []grpc.ServerOption
	gs := grpc.NewServer(opts...)
	RegisterRateStatServer(gs, s)
	log.Infof("Serving GRPC at %v", addr)
	return gs.Serve(ln)
}

func (s *GRPC) Close() {
	log.Info("Closing GRPC")
	defer func() {
		log.Info("GRPC closed")
	}()
	if s.ln != nil {
		s.ln.Close()
	}
}

package main

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
	"github.com/webtor-io/dc-progress/ratecalc"
	s "github.com/webtor-io/dc-progress/services"
)

func makeServeCMD() cli.Command {
	serveCmd := cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves web and grpc rate stats",
		Action:  serve,
	}
	configureServe(&serveCmd)
	return serveCmd
}

func configureServe(c *cli.Command) {
	c.Flags = s.RegisterWebFlags([]cli.Flag{})
	c.Flags = cs.RegisterProbeFlags(c.Flags)
	c.Flags = s.RegisterGRPCFlags(c.Flags)
	c.Flags = s.RegisterTickerFlags(c.Flags)
}

func serve(c *cli.Context) error {
	// Setting Probe
	probe := cs.NewProbe(c)
	defer probe.Close()

	// Setting RateTicker
	ticker := s.NewRateTicker(c, ratecalc.Default)
	defer ticker.Close()

	// Setting StatPool
	sp := s.NewStatPool(ratecalc.Default)

	// Setting WriterPool
	wp := s.NewWriterPool(sp)

	// Setting Web
	web := s.NewWeb(c, http.DefaultClient, wp, sp)
	defer web.Close()

	// Setting GRPC
	grpc := s.NewGRPC(c, sp)
	defer grpc.Close()

	// Setting ServeService
	serve := cs.NewServe(probe, web, grpc, ticker)

	// And SERVE!
	err := serve.Serve()
	if err != nil {
		log.WithError(err).Error("Got server error")
	}
	return err
}

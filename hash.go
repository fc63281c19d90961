package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/webtor-io/dc-progress/ratecalc"
	s "github.com/webtor-io/dc-progress/services"
	"github.com/webtor-io/dc-progress/strutil"
)

func makeHashCMD() cli.Command {
	hashCmd := cli.Command{
		Name:      "hash",
		Usage:     "Hashes files and prints their base32 roots",
		ArgsUsage: "<file>...",
		Action:    hash,
	}
	hashCmd.Flags = s.RegisterTickerFlags([]cli.Flag{})
	return hashCmd
}

func hash(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("No files given")
	}

	var e ratecalc.Entity
	ticker := s.NewRateTicker(c, ratecalc.Default)
	ticker.OnTick(func() {
		log.Infof("Hashing at %v/s", strings.TrimSpace(strutil.FormatSize(uint64(e.Get()))))
	})
	go func() {
		if err := ticker.Serve(); err != nil {
			log.WithError(err).Error("Got ticker error")
		}
	}()
	defer ticker.Close()

	h := s.NewHasher(ratecalc.Default)
	for _, p := range c.Args() {
		root, err := h.HashFile(context.Background(), p, &e)
		if err != nil {
			return errors.Wrapf(err, "Failed to hash %v", p)
		}
		fmt.Printf("%v  %v\n", root, p)
	}
	return nil
}

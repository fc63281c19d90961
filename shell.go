package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/webtor-io/dc-progress/conf"
	"github.com/webtor-io/dc-progress/ratecalc"
	"github.com/webtor-io/dc-progress/shell"
)

const (
	dirFlag = "dir"
)

func makeShellCMD() cli.Command {
	return cli.Command{
		Name:  "shell",
		Usage: "Starts the interactive shell",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:   dirFlag,
				Usage:  "data directory",
				Value:  "",
				EnvVar: "DC_DIR",
			},
		},
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	dir := c.String(dirFlag)
	if dir == "" {
		d, err := conf.DefaultDir()
		if err != nil {
			return err
		}
		dir = d
	}
	cfg, err := conf.Open(dir)
	if err != nil {
		return errors.Wrap(err, "Failed to open data directory")
	}
	defer cfg.Close()

	lf, err := os.OpenFile(filepath.Join(cfg.LogsDir(), "shell.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return errors.Wrap(err, "Failed to open log file")
	}
	defer lf.Close()
	log.SetOutput(lf)
	defer log.SetOutput(os.Stderr)

	return shell.New(cfg, ratecalc.Default).Run()
}

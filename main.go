package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "dc-progress"
	app.Usage = "Tracks transfer and hashing rates of a Direct Connect client"
	app.Version = "0.0.1"
	app.Commands = []cli.Command{
		makeServeCMD(),
		makeHashCMD(),
		makeShellCMD(),
	}
	err := app.Run(os.Args)
	if err != nil {
		log.WithError(err).Fatal("Failed to run application")
	}
}

package cmd

import (
	"github.com/urfave/cli"

	"github.com/spica-project/spica/log"
)

var logger = log.New("spica")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

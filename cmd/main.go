package main

//
//  @title           k4bridge API
//  @version         1.0
//  @description     Converts Trading 212 CSV exports into Swedish K4 (Bilaga B) statements.
//  @termsOfService  https://github.com/guttosm/k4bridge
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/k4bridge
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        conversions
//  @tag.description Upload an export and download the generated K4 artifacts
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/guttosm/k4bridge/config"
	_ "github.com/guttosm/k4bridge/docs" // swagger docs
	"github.com/guttosm/k4bridge/internal/logger"
)

// commands lists every k4bridge subcommand.
var commands = []subcommands.Command{
	&convertCmd{},
	&summaryCmd{},
	&serveCmd{},
}

// main is the entry point of the k4bridge application.
//
// Subcommands:
//   - convert: writes the K4 workbook, CSV and PDF for one or more exports.
//   - summary: prints the K4 box totals and a preview of one export.
//   - serve:   starts the REST API.
func main() {
	config.LoadConfig()
	logger.Configure(logger.Options{
		Level:  config.AppConfig.Log.Level,
		Pretty: config.AppConfig.Log.Pretty,
	})

	commander := subcommands.NewCommander(flag.CommandLine, "k4bridge")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

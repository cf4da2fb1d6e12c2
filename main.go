// Package main provides the entry point for the Plan Marker application.
package main

import (
	"os"

	"plan-marker/internal/app"
	"plan-marker/internal/config"
	"plan-marker/internal/logging"
	"plan-marker/internal/version"
	"plan-marker/ui/mainwindow"

	fyneapp "fyne.io/fyne/v2/app"
)

func main() {
	if err := config.Load("."); err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
	}
	log := logging.Default(config.GetString("logLevel"))
	log.Info().Str("version", version.Version).Msg("starting plan-marker")

	fyneApp := fyneapp.NewWithID("io.planmarker.app")
	fyneApp.Settings().SetTheme(&app.PlanMarkerTheme{})

	state := app.NewState(config.GetString("dataDir"), log)
	if err := state.LoadRegistry(); err != nil {
		log.Warn().Err(err).Msg("could not load project registry")
	}

	win := mainwindow.New(fyneApp, state, log)

	// A project file given on the command line takes precedence over the
	// remembered one.
	if len(os.Args) > 1 {
		if err := state.OpenProjectFile(os.Args[1]); err != nil {
			log.Error().Err(err).Str("path", os.Args[1]).Msg("could not open project")
		}
	}

	win.Show()
	win.Start()
	fyneApp.Run()
}

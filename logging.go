package lumen

import (
	"github.com/gekko3d/lumen/logging"
)

// LoggingModule installs a go-logging backed logger as a resource.
type LoggingModule struct {
	Module string
	Debug  bool
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	name := m.Module
	if name == "" {
		name = "lumen"
	}
	logger := logging.NewDefaultLogger(name, m.Debug)
	app.logger = logger
	app.addResources(logger)
}

// Logger returns the installed logger, or a no-op logger. Never nil.
func (app *App) Logger() logging.Logger {
	if app == nil {
		return logging.NewNopLogger()
	}
	return logging.OrNop(app.logger)
}

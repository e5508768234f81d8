package main

import (
	"github.com/gekko3d/lumen/logging"
)

var logger = logging.NewDefaultLogger("lumen-cli", false)

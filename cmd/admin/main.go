// Command admin runs maintenance tasks against the UniCampus database.
package main

import (
	"os"

	"github.com/yigit/unicampus/internal/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

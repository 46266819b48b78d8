package main

import (
	"os"
	"path/filepath"

	"github.com/yigit/unicampus/internal/pkg/logger"
	"github.com/yigit/unicampus/internal/server"
)

// @title UniCampus API
// @version 1.0
// @description API for the UniCampus university management platform
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@unicampus.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join("configs", "config.yaml")
	}

	srv, err := server.NewServer(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}

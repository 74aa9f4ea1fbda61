package main

import (
	"os"

	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/server"
)

// @title Smart Student Hub API
// @version 1.0
// @description Academic portal API: institute hierarchy, achievement review and analytics

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// details are logged by the bootstrap steps
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}

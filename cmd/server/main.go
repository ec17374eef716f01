package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/linkcraft-ai/backend/internal/app"
	"github.com/linkcraft-ai/backend/internal/config"
)

const defaultPort = "8080"

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config.yaml (overrides CONFIG_PATH)")
	port := flag.String("port", defaultPort, "HTTP listen port")
	flag.Parse()

	if *configPath != "" {
		if errSet := os.Setenv(config.EnvConfigPath, *configPath); errSet != nil {
			return fmt.Errorf("set config path: %w", errSet)
		}
	}
	if errPort := validatePort(*port); errPort != nil {
		return errPort
	}

	log.SetFormatter(&log.JSONFormatter{})
	return app.RunServer(*port)
}

func validatePort(port string) error {
	trimmed := strings.TrimSpace(port)
	parsed, errParse := strconv.Atoi(trimmed)
	if errParse != nil || parsed < 1 || parsed > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}

package main

import (
	"errors"
	"os"

	"github.com/richard-senior/predictomatic/internal/cli"
	"github.com/richard-senior/predictomatic/internal/logger"
)

func main() {
	logger.SetShowDateTime(true)

	if err := cli.Run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			logger.Error(err.Error())
			os.Exit(2)
		}
		logger.Fatal("predictomatic failed:", err)
	}
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mikey/mailgun-routes/internal/adapters/cli"
	"github.com/mikey/mailgun-routes/internal/di"
	"go.uber.org/zap"
)

// exitRejected is returned when the message would be rejected
const exitRejected = 2

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	var accepted bool
	err = container.Invoke(func(logger *zap.Logger, checker *cli.Checker, flags *di.CLIFlags) error {
		defer logger.Sync()

		raw, err := readInput(flags.InputFile)
		if err != nil {
			return err
		}

		accepted = checker.Check(flags.From, raw).Accepted
		return nil
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if !accepted {
		os.Exit(exitRejected)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return raw, nil
}

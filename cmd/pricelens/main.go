package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"

	"github.com/ppiankov/pricelens/internal/cli"
	"github.com/ppiankov/pricelens/internal/version"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	if err := fang.Execute(context.Background(), cli.Root(),
		fang.WithVersion(version.Version),
		fang.WithCommit(version.GitCommit),
	); err != nil {
		os.Exit(1)
	}
}

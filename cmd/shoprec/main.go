// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

// Package main is the entry point for the shoprec command.
//
// shoprec trains item recommenders from implicit-feedback exports (orders,
// item page views and favorites) and prints top-K recommendations for a
// user from the last trained artifact set.
//
// # Commands
//
//	shoprec [-config FILE] train [-json]
//	shoprec [-config FILE] recommend -user ID [-k N] [-model ease|bprmf] [-diversity L] [-json]
//
// train reads the exports, fits BPR-MF and EASE, evaluates both on a
// temporal hold-out and saves the artifacts. recommend loads the artifacts,
// rebuilds the user's profile from the exports and ranks unseen items.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables with the SHOPREC_ prefix
//   - Config file (-config, CONFIG_PATH or shoprec.yaml)
//   - Built-in defaults
//
// # Exit Codes
//
//	0  success
//	1  command failed
//	2  usage error
//
// # Example Usage
//
//	export SHOPREC_DATA_DIR=/srv/exports
//	export SHOPREC_EPOCHS=30
//	shoprec train
//	shoprec recommend -user 1234567 -k 10 -model bprmf
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/shoprec/internal/config"
	"github.com/tomtom215/shoprec/internal/logging"
	"github.com/tomtom215/shoprec/internal/metrics"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks command-line mistakes; the usage text has already been printed.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shoprec", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }
	configPath := fs.String("config", "", "path to YAML config file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		printUsage(stderr)
		return exitUsage
	}

	var command func(context.Context, *config.Config, []string, io.Writer, io.Writer) error
	switch name := fs.Arg(0); name {
	case "train":
		command = runTrain
	case "recommend":
		command = runRecommend
	default:
		fmt.Fprintf(stderr, "shoprec: unknown command %q\n\n", name)
		printUsage(stderr)
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "shoprec: %v\n", err)
		return exitError
	}
	logOpts := cfg.LoggingOptions()
	logOpts.Output = stderr
	logging.Init(logOpts)

	err = command(ctx, cfg, fs.Args()[1:], stdout, stderr)

	if path := cfg.Metrics.TextfilePath; path != "" {
		if werr := metrics.WriteTextfile(path); werr != nil {
			logging.Warn().Err(werr).Str("path", path).Msg("Failed to write metrics textfile")
		} else {
			logging.Info().Str("path", path).Msg("Metrics textfile written")
		}
	}

	switch {
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	case err != nil:
		logging.Err(err).Str("command", fs.Arg(0)).Msg("Command failed")
		return exitError
	}
	return exitOK
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage:
  shoprec [-config FILE] train [-json]
  shoprec [-config FILE] recommend -user ID [-k N] [-model ease|bprmf] [-diversity L] [-json]

Run "shoprec <command> -h" for command flags.
`)
}

// parseFlags parses a subcommand's flags, mapping parse failures to errUsage.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return errUsage
	}
	return nil
}

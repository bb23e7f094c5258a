package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/Alia5/factorygen/internal/config"
	"github.com/Alia5/factorygen/internal/configpaths"
	"github.com/Alia5/factorygen/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("factorygen"),
		kong.Description("Generates id -> type factory dispatchers for Go interfaces"),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	var source log.SourceLogger
	switch {
	case cli.Log.SourceFile != "":
		f, err := os.OpenFile(cli.Log.SourceFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open source log file", "file", cli.Log.SourceFile, "error", err)
			source = log.NewSource(nil, false)
		} else {
			source = log.NewSource(f, false)
			closeFiles = append(closeFiles, f)
		}
	case cli.Log.Level == "trace":
		source = log.NewSource(os.Stdout, true)
	default:
		source = log.NewSource(nil, false)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx.Bind(logger)
	ctx.BindTo(source, (*log.SourceLogger)(nil))
	ctx.BindTo(runCtx, (*context.Context)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv(configpaths.EnvConfig)
}

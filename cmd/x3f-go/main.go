package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/weaming/x3fraw/x3f"
)

func main() {
	var logLevel string
	cfg := LoadConfig()

	app := &cli.Command{
		Name:  "x3f-go",
		Usage: "X3F container inspector and sRaw YCbCr reconstruction",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "trace level: debug, info, warn, error",
				Value:       "info",
				Destination: &logLevel,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if cfg.LogLevel != "" && !c.IsSet("log-level") {
				logLevel = cfg.LogLevel
			}
			if os.Getenv("DEBUG") != "" && !c.IsSet("log-level") {
				logLevel = "debug"
			}
			var level slog.Level
			if err := level.UnmarshalText([]byte(strings.ToLower(logLevel))); err != nil {
				return ctx, fmt.Errorf("invalid log level %q", logLevel)
			}
			x3f.SetTraceLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return cli.ShowAppHelp(c)
		},
		Commands: []*cli.Command{
			infoCmd(),
			metaCmd(),
			reconstructCmd(cfg),
			thumbnailCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// openInput opens the X3F file named by the first positional argument.
func openInput(c *cli.Command) (*x3f.File, error) {
	if c.Args().Len() != 1 {
		return nil, fmt.Errorf("expected exactly one input file")
	}
	f, err := x3f.Open(c.Args().First())
	if err != nil {
		return nil, fmt.Errorf("无法打开 X3F 文件: %w", err)
	}
	return f, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/folio/internal"
	"github.com/starford/folio/internal/parser"
	"github.com/starford/folio/internal/preview"
	pkgconfig "github.com/starford/folio/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var errNotFormatted = errors.New("file is not in canonical form")

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, opts...)
}

// readInput reads the named file, or stdin for "-".
func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

func formatFile(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("fmt: file argument is required")
	}
	data, err := readInput(name)
	if err != nil {
		return fmt.Errorf("fmt: %w", err)
	}
	out := parser.Format(string(data))

	switch {
	case cmd.Bool("check"):
		if out != string(data) {
			return fmt.Errorf("%s: %w", name, errNotFormatted)
		}
		return nil
	case cmd.Bool("write") && name != "-":
		if out == string(data) {
			return nil
		}
		info, err := os.Stat(name)
		if err != nil {
			return fmt.Errorf("fmt: %w", err)
		}
		return os.WriteFile(name, []byte(out), info.Mode().Perm())
	default:
		_, err := io.WriteString(os.Stdout, out)
		return err
	}
}

func previewFile(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("preview: file argument is required")
	}
	data, err := readInput(name)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	_, err = io.WriteString(os.Stdout, preview.Strip(string(data)))
	return err
}

func main() {
	cmd := &cli.Command{
		Name:    "folio",
		Usage:   "Annotated Markdown documents with stable ids, generated contents and references",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, SSE stream and library watcher",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdin/stdout",
				Action: serveMCP,
			},
			{
				Name:      "fmt",
				Usage:     "Rewrite a document in canonical form",
				ArgsUsage: "<file|->",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "write", Aliases: []string{"w"}, Usage: "Write the result back to the file"},
					&cli.BoolFlag{Name: "check", Usage: "Fail if the file is not already canonical"},
				},
				Action: formatFile,
			},
			{
				Name:      "preview",
				Usage:     "Print a document without its metadata",
				ArgsUsage: "<file|->",
				Action:    previewFile,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/declgraph/internal/config"
	"github.com/standardbeagle/declgraph/internal/debug"
	"github.com/standardbeagle/declgraph/internal/discovery"
	"github.com/standardbeagle/declgraph/internal/engine"
	"github.com/standardbeagle/declgraph/internal/syntax"
	"github.com/standardbeagle/declgraph/internal/types"
	"github.com/standardbeagle/declgraph/internal/version"
	"github.com/standardbeagle/declgraph/internal/watch"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")

	// If root is specified and config path is default, look for config in root directory
	if rootFlag := c.String("root"); rootFlag != "" && configPath == config.DefaultConfigName {
		configPath = filepath.Join(rootFlag, config.DefaultConfigName)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if rootFlag := c.String("root"); rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		cfg.Project.Root = absRoot
	}
	if c.Bool("verbose") {
		cfg.Verbose = true
	}
	if output := c.String("output"); output != "" {
		cfg.Output.Path = output
	}
	return cfg, nil
}

func main() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Println(version.FullInfo())
	}

	app := &cli.App{
		Name:                   "declgraph",
		Usage:                  "Build a unified semantic type graph from structural syntax indexes",
		Version:                version.Info(),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   config.DefaultConfigName,
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include source files matching glob patterns (e.g., --include 'Sources/**/*.swift')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude source files matching glob patterns",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Emit resolution diagnostics to stderr",
			},
			&cli.BoolFlag{
				Name:   "debug-log",
				Usage:  "Write a debug log file under the system temp directory",
				Hidden: true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "parse",
				Usage: "Parse a batch of source units and emit the unified type graph",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: stdout)",
					},
				},
				Action: runParse,
			},
			{
				Name:  "watch",
				Usage: "Re-run the batch whenever a source or index file changes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: stdout)",
					},
				},
				Action: runWatch,
			},
			{
				Name:  "config",
				Usage: "Manage configuration",
				Subcommands: []*cli.Command{
					{
						Name:   "init",
						Usage:  "Write a default " + config.DefaultConfigName,
						Action: runConfigInit,
					},
					{
						Name:   "show",
						Usage:  "Print the resolved configuration",
						Action: runConfigShow,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "declgraph: %v\n", err)
		os.Exit(1)
	}
}

func setupDebugLog(c *cli.Context) {
	if !c.Bool("debug-log") {
		return
	}
	if path, err := debug.InitDebugLogFile(); err == nil {
		fmt.Fprintf(os.Stderr, "declgraph: debug log at %s\n", path)
	}
}

func runParse(c *cli.Context) error {
	setupDebugLog(c)
	defer debug.CloseDebugLog()

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	graph, err := runBatch(cfg)
	if err != nil {
		return err
	}
	return writeGraph(cfg, graph)
}

func runWatch(c *cli.Context) error {
	setupDebugLog(c)
	defer debug.CloseDebugLog()

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	rerun := func() {
		graph, err := runBatch(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "declgraph: %v\n", err)
			return
		}
		if err := writeGraph(cfg, graph); err != nil {
			fmt.Fprintf(os.Stderr, "declgraph: %v\n", err)
		}
	}
	rerun()

	w, err := watch.New(cfg.Project.Root, cfg.Include, watch.DefaultDebounce, func(paths []string) {
		debug.Logf("change detected in %d file(s), re-running batch", len(paths))
		rerun()
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "declgraph: watching %s\n", cfg.Project.Root)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runConfigInit(c *cli.Context) error {
	path := c.String("config")
	if path == "" {
		path = config.DefaultConfigName
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(config.DefaultKDL), 0644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runConfigShow(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// sourceUnit pairs one source payload with its syntax index.
type sourceUnit struct {
	path   string
	source string
	index  *syntax.Index
}

// runBatch discovers the batch, loads source and index files concurrently,
// then feeds them to a fresh engine in path order and unifies.
func runBatch(cfg *config.Config) ([]*types.Type, error) {
	sources, err := discovery.Sources(cfg.Project.Root, cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	debug.Logf("discovered %d source file(s) under %s", len(sources), cfg.Project.Root)

	units := make([]*sourceUnit, len(sources))
	g := new(errgroup.Group)
	g.SetLimit(cfg.Performance.ParallelFileWorkers)
	for i, path := range sources {
		i, path := i, path
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read source %s: %w", path, err)
			}
			index, err := syntax.LoadFile(discovery.IndexPathFor(path))
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					// No index means the structural parser has not run for
					// this file yet; skip it rather than failing the batch.
					fmt.Fprintf(os.Stderr, "declgraph: no syntax index for %s, skipping\n", path)
					return nil
				}
				return err
			}
			units[i] = &sourceUnit{path: path, source: string(data), index: index}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	eng := engine.New(engine.Config{
		Verbose:          cfg.Verbose,
		DiagnosticWriter: os.Stderr,
	})
	for _, unit := range units {
		if unit == nil {
			continue
		}
		eng.Parse(unit.source, unit.index)
	}
	return eng.Unify(), nil
}

func writeGraph(cfg *config.Config, graph []*types.Type) error {
	data, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if cfg.Output.Path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(cfg.Output.Path, data, 0644)
}

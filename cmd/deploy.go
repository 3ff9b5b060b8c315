package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/slipway-sh/slipway/config"
	"github.com/slipway-sh/slipway/internal/tui"
	"github.com/slipway-sh/slipway/pipeline"
	"github.com/slipway-sh/slipway/stages"
	"github.com/slipway-sh/slipway/util"
)

var (
	deployName  string
	deployPlain bool
	deployFail  string
	deployHost  string
	deployDelay time.Duration
)

var deployCmd = &cobra.Command{
	Use:   "deploy [source-file]",
	Short: "Deploy a project through the simulated pipeline",
	Long:  "Deploy reads the source payload from the given file (or stdin when the argument is omitted or \"-\") and walks it through every pipeline stage, ending in a published URL or a failure.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDeploy,
}

func init() {
	deployCmd.Flags().StringVarP(&deployName, "name", "n", "", "project name (defaults to the source file name)")
	deployCmd.Flags().BoolVar(&deployPlain, "plain", false, "log the run to the console instead of the TUI")
	deployCmd.Flags().StringVar(&deployFail, "fail", "", "force the given stage to fail (see 'slipway stages' for ids)")
	deployCmd.Flags().StringVar(&deployHost, "host", "", "override the hosting domain")
	deployCmd.Flags().DurationVar(&deployDelay, "delay", 0, "override the base stage delay")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source, sourcePath, err := readSource(args)
	if err != nil {
		return err
	}

	name := deployName
	if name == "" {
		if sourcePath == "" {
			return fmt.Errorf("--name is required when reading source from stdin")
		}
		name = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	}
	project := util.Slugify(name)
	if project == "" {
		return fmt.Errorf("project name %q normalizes to an empty slug", name)
	}

	opts := stages.Options{
		Host:        cfg.Host,
		Unit:        cfg.StageDelay,
		MaxSourceKB: cfg.MaxSourceKB,
		FailStage:   deployFail,
	}
	if deployHost != "" {
		opts.Host = deployHost
	}
	if cmd.Flags().Changed("delay") {
		opts.Unit = deployDelay
	}

	reg, err := stages.Defaults(opts)
	if err != nil {
		return fmt.Errorf("building stage registry: %w", err)
	}
	state := pipeline.NewState(reg)
	in := pipeline.Input{Project: project, Source: source}

	if deployPlain {
		return deployPlainMode(cmd.Context(), reg, state, in)
	}
	return deployTUIMode(reg, state, in, cfg)
}

func deployTUIMode(reg *pipeline.Registry, state *pipeline.State, in pipeline.Input, cfg *config.Config) error {
	theme := themeOverride
	if theme == "" {
		theme = cfg.Theme
	}
	runner := pipeline.NewRunner(reg, state)
	model := tui.NewDeployModel(tui.DetectTheme(theme), runner, in, appVersion)

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("running deploy view: %w", err)
	}
	if m, ok := final.(tui.DeployModel); ok && m.Err() != nil {
		// The view already showed the failure; exit non-zero quietly.
		os.Exit(1)
	}
	return nil
}

func deployPlainMode(ctx context.Context, reg *pipeline.Registry, state *pipeline.State, in pipeline.Input) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	runner := pipeline.NewRunner(reg, state, pipeline.WithLogger(logger))

	sub, cancel := state.Subscribe()
	defer cancel()
	done := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		seen := 0
		for {
			select {
			case <-sub:
				entries := state.Log().All()
				for _, e := range entries[seen:] {
					logEntry(logger, e)
				}
				seen = len(entries)
			case <-done:
				entries := state.Log().All()
				for _, e := range entries[seen:] {
					logEntry(logger, e)
				}
				return
			}
		}
	}()

	runErr := runner.Run(ctx, in)
	close(done)
	<-drained

	snap := state.Snapshot()
	if runErr != nil {
		if errors.Is(runErr, pipeline.ErrRunInProgress) {
			return runErr
		}
		return fmt.Errorf("deployment failed: %w", runErr)
	}
	fmt.Fprintf(os.Stdout, "%s\n", snap.Result)
	return nil
}

func logEntry(logger zerolog.Logger, e pipeline.Entry) {
	ev := logger.Info()
	switch e.Kind {
	case pipeline.KindError:
		ev = logger.Error()
	case pipeline.KindWarning:
		ev = logger.Warn()
	}
	ev.Str("kind", e.Kind.String()).Msg(e.Message)
}

// loadConfig reads the config file named by --config. A missing file at
// the default path falls back to built-in defaults; an explicit path
// must exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err == nil {
		return cfg, nil
	}
	if os.IsNotExist(errors.Unwrap(err)) && cfgFile == "slipway.yaml" {
		return config.Default(), nil
	}
	return nil, err
}

// readSource returns the source payload and, when read from a file, its
// path.
func readSource(args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading source from stdin: %w", err)
		}
		return string(data), "", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("reading source file: %w", err)
	}
	return string(data), args[0], nil
}

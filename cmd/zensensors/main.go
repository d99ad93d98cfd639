package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/zensensors/internal/collector"
	"codeberg.org/mutker/zensensors/internal/config"
	"codeberg.org/mutker/zensensors/internal/errors"
	"codeberg.org/mutker/zensensors/internal/logger"
	"codeberg.org/mutker/zensensors/internal/pid"
	"codeberg.org/mutker/zensensors/internal/poller"
	"codeberg.org/mutker/zensensors/internal/sensor"
	"codeberg.org/mutker/zensensors/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const logFilePerm = 0o644

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	closeLog, err := initLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer closeLog()
	logger.Debug().Interface("config", cfg).Msg("Config loaded")

	pidFile := pid.New(cfg.PIDFile)
	if err := pidFile.Write(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer func() {
		if err := pidFile.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loop(ctx, cfg); err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) {
			logger.ErrorWithCode(appErr).Msg("error in main loop")
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	logger.Info().Msg("Exiting...")

	return 0
}

// initLogger sends logs to stdout in monitor mode. The TUI owns the terminal,
// so there logs go to the configured file or nowhere.
func initLogger(cfg *config.Config) (func(), error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stdout
	closeFn := func() {}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
		if err != nil {
			return nil, errors.New().WrapWithData(errors.ErrOpenLogFile, err, cfg.LogFile)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	} else if !cfg.Monitor {
		logger.Disable()
		return closeFn, nil
	}

	logger.Init(level, out, logger.IsService())

	return closeFn, nil
}

func loop(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := poller.New(collector.New())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.Run(ctx)
	})
	g.Go(func() error {
		// Whichever way the presenter ends, stop polling.
		defer cancel()

		if cfg.Monitor {
			logger.Info().Msg("Monitor mode activated. Logging sensor readings...")
			return monitor(p.Results())
		}

		return present(ctx, p.Results())
	})

	return g.Wait()
}

func present(ctx context.Context, results <-chan poller.Result) error {
	model := tui.New(results, tui.DetectHost(ctx))

	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return errors.New().Wrap(errors.ErrPresent, err)
	}

	return nil
}

// monitor logs every successful reading; failures are logged by the poller.
func monitor(results <-chan poller.Result) error {
	for res := range results {
		if res.Err != nil || res.Snapshot == nil || res.Snapshot.CPU == nil {
			continue
		}
		logSnapshot(res)
	}

	return nil
}

func logSnapshot(res poller.Result) {
	cpu := res.Snapshot.CPU

	freqs := make([]float64, len(cpu.Cores))
	for i, core := range cpu.Cores {
		freqs[i] = core.FrequencyMHz
	}

	event := logger.Info().
		Dur("poll_duration", res.Duration).
		Int("cores", len(cpu.Cores)).
		Floats64("core_mhz", freqs)

	if zen2, ok := cpu.Temperature.(sensor.Zen2Reading); ok {
		event = event.
			Float64("vcore", zen2.VoltageCore).
			Float64("vsoc", zen2.VoltageSoC).
			Float64("icore", zen2.CurrentCore).
			Float64("isoc", zen2.CurrentSoC).
			Float64("tdie", zen2.TempDie).
			Float64("tctl", zen2.TempCtl).
			Float64("tccd1", zen2.TempCCD1).
			Float64("tccd2", zen2.TempCCD2)
	}

	event.Msg("")
}

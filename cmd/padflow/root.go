package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/padflow/assembly"
	"github.com/kbukum/padflow/config"
	"github.com/kbukum/padflow/dag"
	"github.com/kbukum/padflow/logger"
	"github.com/kbukum/padflow/observability"
	"github.com/kbukum/padflow/version"
)

const serviceName = "padflow"

// app carries what every subcommand needs after flag parsing.
type app struct {
	configFile string
	envFile    string
	cfg        config.Config
	log        *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          serviceName,
		Short:        "Tick-driven DAG streaming pipelines",
		Long:         "padflow builds pipelines of sources, transforms and sinks from YAML and runs them tick by tick.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "padflow config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", ".env file with PADFLOW_* overrides")

	root.AddCommand(newRunCmd(a), newGraphCmd(a), newVersionCmd())
	return root
}

// setup loads configuration and installs the global logger. Logs go to
// stderr; stdout is left to sinks and rendered graphs.
func (a *app) setup(cmd *cobra.Command) error {
	var opts []config.LoaderOption
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if a.envFile != "" {
		opts = append(opts, config.WithEnvFile(a.envFile))
	}
	if err := config.LoadConfig(serviceName, &a.cfg, opts...); err != nil {
		return err
	}
	a.cfg.ApplyDefaults()
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.log = logger.NewWithWriter(&a.cfg.Logging, a.cfg.Name, cmd.ErrOrStderr())
	logger.SetGlobalLogger(a.log)
	logger.RegisterDefaults()
	return nil
}

// build loads a definition and assembles its pipeline. Config runner limits
// apply only where the definition leaves them unset.
func (a *app) build(file string, extra ...dag.Option) (*dag.Pipeline, error) {
	def, err := assembly.LoadFile(file)
	if err != nil {
		return nil, err
	}
	dirs := append([]string{filepath.Dir(file)}, a.cfg.Runner.DefinitionDirs...)

	opts := []dag.Option{dag.WithLogger(logger.Get(logger.ComponentDAG))}
	if def.Runner.MaxParallel == 0 && a.cfg.Runner.MaxParallel > 0 {
		opts = append(opts, dag.WithMaxParallel(a.cfg.Runner.MaxParallel))
	}
	if def.Runner.MaxTicks == 0 && a.cfg.Runner.MaxTicks > 0 {
		opts = append(opts, dag.WithMaxTicks(a.cfg.Runner.MaxTicks))
	}
	opts = append(opts, extra...)

	return assembly.Build(def, nil, assembly.NewFileLoader(dirs...), opts...)
}

// observability starts the configured OTLP exporters and returns the
// pipeline options that use them plus a shutdown func.
func (a *app) observability(ctx context.Context) ([]dag.Option, func(), error) {
	var (
		opts      []dag.Option
		shutdowns []func(context.Context) error
	)

	if a.cfg.Tracing.Enabled {
		tc := observability.DefaultTracerConfig(a.cfg.Name)
		tc.ServiceVersion = version.Get().Short()
		tc.Environment = a.cfg.Environment
		tc.Endpoint = a.cfg.Tracing.Endpoint
		tc.Insecure = a.cfg.Tracing.Insecure
		tc.SampleRate = a.cfg.Tracing.SampleRate
		tp, err := observability.InitTracer(ctx, &tc)
		if err != nil {
			return nil, nil, err
		}
		shutdowns = append(shutdowns, tp.Shutdown)
		opts = append(opts, dag.WithTracing(true))
	}

	if a.cfg.Metrics.Enabled {
		mc := observability.DefaultMeterConfig(a.cfg.Name)
		mc.ServiceVersion = version.Get().Short()
		mc.Environment = a.cfg.Environment
		mc.Endpoint = a.cfg.Metrics.Endpoint
		mc.Insecure = a.cfg.Metrics.Insecure
		mc.Interval = a.cfg.Metrics.Interval
		mp, err := observability.InitMeter(ctx, &mc)
		if err != nil {
			return nil, nil, err
		}
		shutdowns = append(shutdowns, mp.Shutdown)

		m, err := observability.NewMetrics(observability.Meter(serviceName))
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, dag.WithMetrics(m))
	}

	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		for _, fn := range shutdowns {
			if err := fn(sctx); err != nil {
				a.log.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
			}
		}
	}
	return opts, shutdown, nil
}

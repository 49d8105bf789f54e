package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/padflow/inspect"
	"github.com/kbukum/padflow/logger"
)

func newRunCmd(a *app) *cobra.Command {
	var file, inspectAddr string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline definition until its sinks reach end-of-stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), file, inspectAddr)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "pipeline definition (YAML)")
	cmd.Flags().StringVar(&inspectAddr, "inspect", "", "serve the inspect API on this address during the run")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) run(ctx context.Context, file, inspectAddr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, shutdown, err := a.observability(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	p, err := a.build(file, opts...)
	if err != nil {
		return err
	}

	if inspectAddr == "" {
		inspectAddr = a.cfg.Inspect.Addr
	}
	if inspectAddr != "" {
		log := logger.Get(logger.ComponentInspect)
		srv := inspect.NewServer(inspectAddr, inspect.NewRouter(p, inspect.WithLogger(log)), log)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := srv.Stop(context.WithoutCancel(ctx)); err != nil {
				a.log.Warn("inspect shutdown failed", logger.Fields(logger.FieldError, err.Error()))
			}
		}()
	}

	res, err := p.Run(ctx)
	if res != nil {
		a.log.Info("run finished", logger.Fields(
			logger.FieldPipeline, p.Name(),
			logger.FieldRunID, res.RunID,
			"ticks", res.Ticks,
			logger.FieldDuration, res.Duration.Milliseconds(),
		))
	}
	return err
}

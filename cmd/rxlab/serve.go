package main

import (
	"context"
	"io"

	"github.com/kbukum/rxlab/api"
	"github.com/kbukum/rxlab/bootstrap"
	"github.com/kbukum/rxlab/logger"
	"github.com/kbukum/rxlab/observability"
	"github.com/kbukum/rxlab/runner"
	"github.com/kbukum/rxlab/sandbox"
	"github.com/kbukum/rxlab/server"
	"github.com/kbukum/rxlab/sse"
)

const streamPath = "/api/logs/stream"

func runServe(ctx context.Context, stdout io.Writer, args []string) error {
	fs, cf := newFlagSet("serve", stdout)
	port := fs.IntP("port", "p", 0, "override server.port")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(cf.configFile, cf.envFile)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	if err := wire(ctx, app); err != nil {
		return err
	}
	return app.Run(ctx)
}

// wire builds the telemetry providers, the sandbox and the HTTP surface and
// registers them with app.
func wire(ctx context.Context, app *bootstrap.App[*AppConfig]) error {
	cfg := app.Cfg
	var runnerOpts []runner.Option
	telemetry := observability.NewComponent()

	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, &cfg.Tracing.TracerConfig)
		if err != nil {
			return err
		}
		telemetry.Add("tracer", tp.Shutdown)
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, &cfg.Metrics.MeterConfig)
		if err != nil {
			return err
		}
		telemetry.Add("meter", mp.Shutdown)
		if metrics, err = observability.NewMetrics(mp.Meter(serviceName)); err != nil {
			return err
		}
		runnerOpts = append(runnerOpts, runner.WithMetrics(metrics))
	}

	sb := sandbox.New(cfg.Sandbox, runnerOpts...)
	events := sse.NewComponent(streamPath)

	srv := server.New(cfg.Server, app.Logger)
	srv.ApplyMiddleware(metrics)
	srv.RegisterDefaultEndpoints(cfg.Name, app.Components.HealthAll)
	api.NewHandler(sb, events.Hub(),
		api.WithOperationTimeout(cfg.API.OperationTimeout),
		api.WithKeepAlive(cfg.API.StreamKeepAlive),
	).Register(srv.Engine())

	// Telemetry stops last so spans and metrics recorded while the sandbox
	// cancels its run are exported. The sandbox stops after the hub and
	// the listener so no run outlives them.
	if err := app.RegisterComponent(telemetry); err != nil {
		return err
	}
	if err := app.RegisterComponent(sandbox.NewComponent(sb)); err != nil {
		return err
	}
	if err := app.RegisterComponent(events); err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}

	var unbridge func()
	app.OnStart(func(context.Context) error {
		unbridge = sandbox.BridgeLogs(sb, events.Hub(), api.StreamPattern)
		return nil
	})
	app.OnStop(func(context.Context) error {
		if unbridge != nil {
			unbridge()
		}
		return nil
	})
	app.OnReady(func(context.Context) error {
		app.Logger.Info("Sandbox ready", logger.Fields("addr", srv.Addr(), "pipelines", sb.Catalog().Len()))
		return nil
	})
	return nil
}

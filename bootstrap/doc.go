// Package bootstrap runs a service through its lifecycle: start the
// registered components, run configure callbacks and hooks, wait for a
// signal, then shut everything down in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(sandboxComponent)
//	app.RegisterComponent(httpComponent)
//	err = app.Run(ctx)
//
// RunTask is the same lifecycle for finite work such as CLI commands.
package bootstrap

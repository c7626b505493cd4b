// Package handlers builds the http handlers for the public, private and
// debug APIs of a node.
package handlers

import (
	"context"
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/ardanlabs/fiatlux/app/services/node/handlers/debug/checkgrp"
	v1 "github.com/ardanlabs/fiatlux/app/services/node/handlers/v1"
	"github.com/ardanlabs/fiatlux/business/web/mid"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/state"
	"github.com/ardanlabs/fiatlux/foundation/events"
	"github.com/ardanlabs/fiatlux/foundation/web"
	"go.uber.org/zap"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown chan os.Signal
	Log      *zap.SugaredLogger
	State    *state.State
	Evts     *events.Events
}

// PublicMux constructs the handler for clients submitting transactions and
// reading the chain.
func PublicMux(cfg MuxConfig) http.Handler {
	app := newApp(cfg, mid.Cors("*"))

	// Browsers send a preflight request before a cross origin POST.
	preflight := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	}
	app.Handle(http.MethodOptions, "", "/*", preflight, mid.Cors("*"))

	v1.PublicRoutes(app, v1.Config{
		Log:   cfg.Log,
		State: cfg.State,
		Evts:  cfg.Evts,
	})

	return app
}

// PrivateMux constructs the handler peers use to exchange status, chains
// and peer lists.
func PrivateMux(cfg MuxConfig) http.Handler {
	app := newApp(cfg)

	v1.PrivateRoutes(app, v1.Config{
		Log:   cfg.Log,
		State: cfg.State,
	})

	return app
}

// DebugMux constructs the handler for profiling, expvar metrics and the
// health checks. It never touches http.DefaultServeMux, where any imported
// package could register a handler.
func DebugMux(build string, log *zap.SugaredLogger, st *state.State) http.Handler {
	cgh := checkgrp.Handlers{
		Build: build,
		Log:   log,
		State: st,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	return mux
}

// newApp constructs an app with the middleware both node APIs share. The
// extra middleware runs inside the metrics and outside the panic recovery.
func newApp(cfg MuxConfig, extra ...web.Middleware) *web.App {
	mw := []web.Middleware{
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
	}
	mw = append(mw, extra...)
	mw = append(mw, mid.Panics())

	return web.NewApp(cfg.Shutdown, mw...)
}

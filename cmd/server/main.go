package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mr-karan/slotdb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/redcon"
	"github.com/zerodha/logf"
)

var (
	// Version of the build. This is injected at build-time.
	buildString = "unknown"
)

type App struct {
	lo     logf.Logger
	store  *slotdb.Store
	server *slotdb.Server

	mu     sync.Mutex
	active net.Conn // Connection of the session being served, if any.
}

func main() {
	ko, err := initConfig(os.Args[1:])
	if err != nil {
		logf.New(logf.Opts{}).Fatal("error loading config", "error", err)
	}

	lo := initLogger(ko)
	lo.Info("starting slotdb server", "version", buildString)

	store, err := initStore(ko, lo)
	if err != nil {
		lo.Fatal("error opening store", "path", ko.String("store.path"), "error", err)
	}
	lo.Info("opened store", "path", ko.String("store.path"), "entries", store.EntryCount())

	reg := prometheus.NewRegistry()
	app := &App{
		lo:    lo,
		store: store,
		server: slotdb.NewServer(store,
			slotdb.WithServerLogger(lo),
			slotdb.WithMetrics(slotdb.NewMetrics(reg)),
		),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		admin   *redcon.Server
		metrics *http.Server
	)
	if addr := ko.String("server.admin_address"); addr != "" {
		admin = app.newAdminServer(addr)
		go func() {
			lo.Info("starting admin server", "address", addr)
			if err := admin.ListenAndServe(); err != nil {
				lo.Error("error running admin server", "error", err)
			}
		}()
	}
	if addr := ko.String("server.metrics_address"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			lo.Info("starting metrics server", "address", addr)
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				lo.Error("error running metrics server", "error", err)
			}
		}()
	}

	ln, err := net.Listen("tcp", ko.String("server.address"))
	if err != nil {
		lo.Fatal("error starting server", "address", ko.String("server.address"), "error", err)
	}
	lo.Info("listening for clients", "address", ln.Addr().String())

	go func() {
		<-ctx.Done()
		lo.Info("shutting down")
		_ = ln.Close()
		app.closeActive()
	}()

	if err := app.serveProtocol(ctx, ln); err != nil {
		lo.Error("error accepting connections", "error", err)
	}

	if admin != nil {
		_ = admin.Close()
	}
	if metrics != nil {
		_ = metrics.Close()
	}
	if err := store.Close(); err != nil {
		lo.Error("error closing store", "error", err)
	}
}

// serveProtocol accepts connections one at a time and serves each session to
// completion before accepting the next.
func (app *App) serveProtocol(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		remote := conn.RemoteAddr().String()
		app.lo.Info("accepted connection", "remote", remote)

		app.setActive(conn)
		if err := app.server.Serve(conn); err != nil && ctx.Err() == nil {
			app.lo.Error("session ended with error", "remote", remote, "error", err)
		}
		app.setActive(nil)

		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			app.lo.Error("error closing connection", "remote", remote, "error", err)
		}
	}
}

func (app *App) setActive(conn net.Conn) {
	app.mu.Lock()
	app.active = conn
	app.mu.Unlock()
}

func (app *App) closeActive() {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.active != nil {
		_ = app.active.Close()
	}
}

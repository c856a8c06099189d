package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/confhelper-go/internal/core/domain"
	"github.com/yndnr/confhelper-go/internal/core/schema"
	"github.com/yndnr/confhelper-go/internal/core/service"
	"github.com/yndnr/confhelper-go/internal/infra/confloader"
	"github.com/yndnr/confhelper-go/internal/infra/shutdown"
	"github.com/yndnr/confhelper-go/internal/server/httpserver"
	"github.com/yndnr/confhelper-go/internal/telemetry/logger"
	"github.com/yndnr/confhelper-go/internal/telemetry/metric"
)

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Rebuild the configuration whenever a loaded file changes",
		Description: "Reports the fingerprint after every reload. Runs until interrupted.\n" +
			"With --metrics-addr, an HTTP endpoint serves /metrics, /healthz, /readyz,\n" +
			"/status and the last valid configuration, redacted, on /config.",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Minimum interval between reloads of the same file",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Listen address for the status and metrics endpoint, e.g. :9090",
			},
			&cli.DurationFlag{
				Name:  "shutdown-timeout",
				Usage: "Time allowed for cleanup after an interrupt",
				Value: shutdown.DefaultTimeout,
			},
		},
		Action: watchAction,
	}
}

func watchAction(c *cli.Context) error {
	settings := Settings(c)
	log := Logger(c)

	debounce := settings.Watch.Debounce
	if c.IsSet("debounce") {
		debounce = c.Duration("debounce")
	}
	metricsAddr := settings.Watch.Metrics
	if c.IsSet("metrics-addr") {
		metricsAddr = c.String("metrics-addr")
	}

	h, err := newConfigHelper(c)
	if err != nil {
		return err
	}
	paths := watchedPaths(h)
	if len(paths) == 0 {
		return domain.ErrRuntime.WithDetails("nothing to watch, use --file or --dir")
	}

	w, err := confloader.NewWatcher(
		confloader.WithWatcherLogger(log),
		confloader.WithDebounce(debounce),
	)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	for _, p := range paths {
		if err := w.Watch(p); err != nil {
			w.Stop()
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}

	handler := shutdown.NewHandler(c.Duration("shutdown-timeout"), log)
	handler.OnShutdown("watcher", func(context.Context) error { return w.Stop() })

	status := &httpserver.Status{}
	if metricsAddr != "" {
		srv := httpserver.New(metricsAddr, httpserver.NewRouter(httpserver.RouterConfig{
			Status:    status,
			Metrics:   metric.Global().Handler(),
			Logger:    log,
			AccessLog: true,
		}))
		ln, err := srv.Listen()
		if err != nil {
			w.Stop()
			return domain.ErrRuntime.WithDetailsf("listen on %s", metricsAddr).WithCause(err)
		}
		go func() {
			if err := srv.Serve(ln); err != nil {
				log.Error("status endpoint failed", "addr", metricsAddr, "error", err)
			}
		}()
		handler.OnShutdown("status endpoint", srv.Shutdown)
		log.Info("serving status endpoint", "addr", ln.Addr().String())
	}

	events := make(chan string, 16)
	w.OnChange(func(path string) {
		select {
		case events <- path:
		case <-handler.Done():
		}
	})

	report(c.App.Writer, h, status, "loaded", paths)
	w.StartAsync()

	errCh := make(chan error, 1)
	go func() {
		errCh <- handler.Wait(c.Context)
	}()

	for {
		select {
		case path := <-events:
			reload(c.App.Writer, h, status, log, path)
		case err := <-errCh:
			return err
		}
	}
}

// watchedPaths returns the distinct files backing file contexts.
func watchedPaths(h *service.ConfigHelper) []string {
	seen := make(map[string]struct{})
	var paths []string
	for _, p := range h.Files() {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func reload(out io.Writer, h *service.ConfigHelper, status *httpserver.Status, log logger.Logger, path string) {
	names, err := h.ReloadFile(path)
	if err != nil {
		metric.Global().RecordReload(metric.ResultError)
		status.Publish(&httpserver.Snapshot{
			Contexts:  h.ContextNames(),
			Error:     snapshotError(err),
			ErrorCode: domain.GetErrorCode(err),
		})
		log.Error("reload failed", "path", path, "error", err)
		fmt.Fprintf(out, "reload of %s failed: %v\n", path, err)
		return
	}
	if len(names) == 0 {
		return
	}
	metric.Global().RecordReload(report(out, h, status, "reloaded", names))
}

// report builds the configuration, publishes a snapshot, prints one
// status line and returns the build result.
func report(out io.Writer, h *service.ConfigHelper, status *httpserver.Status, verb string, what []string) string {
	snap := &httpserver.Snapshot{Contexts: h.ContextNames()}

	built, err := h.Built()
	if err == nil {
		var fp uint64
		if fp, err = h.Fingerprint(); err == nil {
			snap.Valid = true
			snap.Fingerprint = fmt.Sprintf("%016x", fp)
			snap.Config = logger.RedactTree(built)
			status.Publish(snap)
			fmt.Fprintf(out, "%s %v: fingerprint %s\n", verb, what, snap.Fingerprint)
			return metric.ResultOK
		}
	}

	snap.Error = snapshotError(err)
	snap.ErrorCode = domain.GetErrorCode(err)
	status.Publish(snap)
	if errors.Is(err, domain.ErrValidation) {
		fmt.Fprintf(out, "%s %v: invalid configuration\n%v\n", verb, what, err)
		return metric.ResultInvalid
	}
	fmt.Fprintf(out, "%s %v: %v\n", verb, what, err)
	return metric.ResultError
}

// snapshotError keeps the raw configuration dump carried by validation
// errors out of the status endpoint.
func snapshotError(err error) string {
	var invalid *schema.InvalidError
	if errors.As(err, &invalid) {
		return invalid.Error()
	}
	return err.Error()
}

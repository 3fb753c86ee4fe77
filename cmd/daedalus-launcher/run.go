// run.go — The run command: supervise the node until interrupted.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hamishmack/daedalus/internal/lifecycle"
	"github.com/hamishmack/daedalus/internal/logging"
	"github.com/hamishmack/daedalus/internal/metrics"
	"github.com/hamishmack/daedalus/internal/oslayer"
	"github.com/hamishmack/daedalus/internal/store"
	"github.com/hamishmack/daedalus/internal/supervisor"
	"github.com/hamishmack/daedalus/internal/util"
)

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start and supervise the node",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runLauncher(cfg)
		},
	}
}

func runLauncher(cfg *launcherConfig) error {
	zlog, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = zlog.Sync() }()
	log := logging.NewZap(zlog)

	st, err := store.OpenSQLite(cfg.StatePath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	reg := prometheus.NewRegistry()
	bcast := metrics.Wrap(reg, &logBroadcaster{log: log})
	osa := oslayer.New(log)
	sup := supervisor.New(log, osAdapter{osa}, st, bcast, lifecycle.Listeners{
		OnCrashed: func(code int, signal string) {
			log.Error("node crashed", "code", code, "signal", signal)
		},
		OnError: func(err error) {
			log.Error("node errored", "error", err)
		},
		OnUnrecoverable: func() {
			log.Error("node unrecoverable, giving up until forced restart")
		},
	})

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		util.SafeGo(log, func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Error("metrics listener stopped", "error", err)
			}
		})
	}

	if err := sup.Start(cfg.supervisorConfig(), false); err != nil {
		return fmt.Errorf("start node: %w", err)
	}

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	sig := <-sigs
	log.Info("shutting down", "signal", sig.String())

	// A second signal while stopping escalates straight to kill.
	done := make(chan error, 1)
	util.SafeGo(log, func() { done <- sup.Stop() })
	select {
	case err := <-done:
		return err
	case <-sigs:
		// Stop holds the supervisor's operation lock until it returns,
		// so the kill goes to the process directly; Stop then observes
		// the death and finishes the bookkeeping.
		log.Info("second signal, killing node")
		if pid, ok := sup.Pid(); ok {
			if err := osa.Terminate(pid); err != nil {
				log.Error("kill node", "pid", pid, "error", err)
			}
		}
		return <-done
	}
}

func buildLogger(cfg *launcherConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.LauncherLog.Debug {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}
	if cfg.LauncherLog.Path != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.LauncherLog.Path,
			MaxSize:    max(cfg.LauncherLog.MaxSizeMB, 10),
			MaxBackups: cfg.LauncherLog.MaxBackups,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotated), level))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// osAdapter narrows the concrete adapter to the supervisor's surface.
type osAdapter struct {
	*oslayer.Adapter
}

func (o osAdapter) Spawn(path string, args []string, logSink io.Writer) (supervisor.Child, error) {
	c, err := o.Adapter.Spawn(path, args, logSink)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// logBroadcaster is the innermost observer: it renders every state
// change and TLS handshake into the launcher log.
type logBroadcaster struct {
	log logging.Logger
}

func (b *logBroadcaster) BroadcastStateChange(state lifecycle.State) {
	b.log.Info("node state", "state", state.String())
}

func (b *logBroadcaster) BroadcastTLSConfig(tls supervisor.TLSConfig) {
	b.log.Info("node tls config ready", "hostname", tls.Hostname, "port", tls.Port)
}

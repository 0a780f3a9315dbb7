// Package state defines shared program state.
package state

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"cssstat/config"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// Charset of input files, nil means UTF-8
	Charset encoding.Encoding

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Setup loads configuration from configFile (defaults when empty), starts
// debug report when requested and creates logger. Standard library log is
// sent to the logger until Close.
func (e *LocalEnv) Setup(configFile string, report bool) (err error) {
	if e.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if report {
		if e.Rpt, err = e.Cfg.Reporting.Prepare(); err != nil {
			return fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		if data, err := config.Dump(e.Cfg); err == nil {
			e.Rpt.StoreData("config.yaml", data)
		}
	}
	if e.Log, err = e.Cfg.Logging.Prepare(e.Rpt); err != nil {
		return fmt.Errorf("unable to prepare logs: %w", err)
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
	return nil
}

// UseCharset selects decoder for input files, empty name keeps UTF-8.
func (e *LocalEnv) UseCharset(name string) (err error) {
	if len(name) == 0 {
		e.Charset = nil
		return nil
	}
	e.Charset, err = config.LookupCharset(name)
	return err
}

// Close flushes logs, finalizes debug report and removes empty crash log.
// Logger must not be used after that, errors are returned instead.
func (e *LocalEnv) Close() (err error) {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
		e.restoreStdLog = nil
	}

	if er := e.Rpt.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
	}
	e.Rpt = nil

	if e.Cfg == nil || len(e.Cfg.Logging.FileLogger.Destination) == 0 {
		return err
	}
	debug.SetCrashOutput(nil, debug.CrashOptions{})
	fname := e.Cfg.Logging.PanicLogName()
	if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
		if er := os.Remove(fname); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
		}
	}
	return err
}

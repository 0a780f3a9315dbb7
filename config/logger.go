package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"cssstat/misc"
)

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

// levelOf maps configured level name, false means logging is off.
func levelOf(name string) (zapcore.Level, bool) {
	switch name {
	case "debug":
		return zapcore.DebugLevel, true
	case "normal":
		return zapcore.InfoLevel, true
	}
	return zapcore.InvalidLevel, false
}

// PanicLogName is where crash output goes when file logging is on.
func (conf *LoggingConfig) PanicLogName() string {
	return filepath.Join(filepath.Dir(conf.FileLogger.Destination), misc.GetAppName()+"-panic.log")
}

// Prepare returns configured zap logger. STDOUT belongs to CSV report, so
// console output of every level goes to STDERR. When debug report is
// requested file log is always on at debug level and is put into report.
func (conf *LoggingConfig) Prepare(rpt *Report) (*zap.Logger, error) {
	fc, redirected, err := conf.fileCore(rpt)
	if err != nil {
		return nil, err
	}

	log := zap.New(zapcore.NewTee(conf.consoleCore(), fc), zap.AddCaller())
	if len(redirected) != 0 {
		log.Warn("Log file was redirected to new location", zap.String("location", redirected))
	}
	return log.Named(misc.GetAppName()), nil
}

func (conf *LoggingConfig) consoleCore() zapcore.Core {
	level, ok := levelOf(conf.ConsoleLogger.Level)
	if !ok {
		return zapcore.NewNopCore()
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if EnableColorOutput(os.Stderr) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	}
	return zapcore.NewCore(consoleEnc{zapcore.NewConsoleEncoder(ec)}, zapcore.Lock(os.Stderr), level)
}

// fileCore opens file log, when destination is not writable temporary file
// is used and its name returned.
func (conf *LoggingConfig) fileCore(rpt *Report) (zapcore.Core, string, error) {
	levelName, mode := conf.FileLogger.Level, conf.FileLogger.Mode
	if rpt != nil {
		levelName, mode = "debug", "overwrite"
	}
	level, ok := levelOf(levelName)
	if !ok {
		return zapcore.NewNopCore(), "", nil
	}

	if ef, err := openLog(conf.PanicLogName(), mode, "-panic.*.log"); err == nil {
		debug.SetCrashOutput(ef, debug.CrashOptions{})
		rpt.Store("panic.log", ef.Name())
		ef.Close()
	}

	f, err := openLog(conf.FileLogger.Destination, mode, ".*.log")
	if err != nil {
		return nil, "", fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
	}
	rpt.Store("final.log", f.Name())

	var redirected string
	if f.Name() != conf.FileLogger.Destination {
		redirected = f.Name()
	}
	return zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(f), level), redirected, nil
}

// openLog opens fname for writing falling back to temporary file named by
// pattern.
func openLog(fname, mode, pattern string) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if mode == "append" {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	if f, err := os.OpenFile(fname, flags, 0644); err == nil {
		return f, nil
	}
	return os.CreateTemp("", misc.GetAppName()+pattern)
}

// consoleEnc keeps console entries on a single line: parse errors carry
// source context on following lines, it only goes to file log.
type consoleEnc struct {
	zapcore.Encoder
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if e, ok := f.Interface.(error); ok && f.Type == zapcore.ErrorType {
			msg, _, _ := strings.Cut(e.Error(), "\n")
			f.Interface = errors.New(msg)
		}
		out = append(out, f)
	}
	return c.Encoder.EncodeEntry(ent, out)
}

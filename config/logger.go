package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"destyle/misc"
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

// Prepare builds the program logger: info and below go to stdout, errors to
// stderr, and an optional file core captures everything for the debug report.
func (conf *LoggingConfig) Prepare(rpt *Report) (*zap.Logger, error) {

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(os.Stdout) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	outEncoder := zapcore.NewConsoleEncoder(ec)

	ec = zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(os.Stderr) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	errEncoder := newBriefErrorEncoder(ec)

	errLevels := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	var outCore, errCore zapcore.Core
	switch conf.ConsoleLogger.Level {
	case "normal":
		outCore = zapcore.NewCore(outEncoder, zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return zapcore.InfoLevel <= lvl && lvl < zapcore.ErrorLevel
			}))
		errCore = zapcore.NewCore(errEncoder, zapcore.Lock(os.Stderr), errLevels)
	case "debug":
		outCore = zapcore.NewCore(outEncoder, zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return zapcore.DebugLevel <= lvl && lvl < zapcore.ErrorLevel
			}))
		errCore = zapcore.NewCore(errEncoder, zapcore.Lock(os.Stderr), errLevels)
	default:
		outCore = zapcore.NewNopCore()
		errCore = zapcore.NewNopCore()
	}

	openLog := func(fname, mode string) (f *os.File, err error) {
		flags := os.O_CREATE | os.O_WRONLY
		if mode == "append" {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		if f, err = os.OpenFile(fname, flags, 0644); err != nil {
			return nil, err
		}
		return f, nil
	}

	var (
		fileEncoder zapcore.Encoder
		fileCore    zapcore.Core
		fileLevel   zap.AtomicLevel
		fileWanted  bool
		level       = conf.FileLogger.Level
		mode        = conf.FileLogger.Mode
	)

	if rpt != nil {
		// a debug report needs the full log, configured level is ignored
		level = "debug"
		mode = "overwrite"
	}

	switch level {
	case "debug":
		fileEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		fileLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
		fileWanted = true
	case "normal":
		fileEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		fileLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
		fileWanted = true
	}

	var movedTo string
	if fileWanted {

		// capture runtime crashes next to the log when possible
		var (
			ef  *os.File
			err error
		)
		if ef, err = openLog(filepath.Join(filepath.Dir(conf.FileLogger.Destination), misc.GetAppName()+"-panic.log"), mode); err == nil {
		} else if ef, err = os.CreateTemp("", misc.GetAppName()+"-panic.*.log"); err == nil {
		} else {
			ef = nil
		}
		if ef != nil {
			debug.SetCrashOutput(ef, debug.CrashOptions{})
			rpt.Store("panic.log", ef.Name())
			ef.Close()
		}

		if f, err := openLog(conf.FileLogger.Destination, mode); err == nil {
			fileCore = zapcore.NewCore(fileEncoder, zapcore.Lock(f), fileLevel)
			rpt.Store("final.log", f.Name())
		} else if f, err = os.CreateTemp("", misc.GetAppName()+".*.log"); err == nil {
			movedTo = f.Name()
			fileCore = zapcore.NewCore(fileEncoder, zapcore.Lock(f), fileLevel)
			rpt.Store("final.log", movedTo)
		} else {
			return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
		}
	} else {
		fileCore = zapcore.NewNopCore()
	}

	log := zap.New(zapcore.NewTee(errCore, outCore, fileCore), zap.AddCaller())
	if len(movedTo) != 0 {
		log.Warn("Log file was redirected to new location", zap.String("location", movedTo))
	}
	return log.Named(misc.GetAppName()), nil
}

// briefErrorEncoder strips the verbose part of error fields on the stderr
// console, the full chain still reaches the file log.
type briefErrorEncoder struct {
	zapcore.Encoder
}

func newBriefErrorEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return briefErrorEncoder{zapcore.NewConsoleEncoder(cfg)}
}

func (c briefErrorEncoder) Clone() zapcore.Encoder {
	return briefErrorEncoder{c.Encoder.Clone()}
}

func (c briefErrorEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	var newFields []zapcore.Field
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			e := f.Interface.(error)
			f.Interface = errors.New(e.Error())
		}
		newFields = append(newFields, f)
	}
	return c.Encoder.EncodeEntry(ent, newFields)
}

// Package logger sets up the internal, access and error logs of folio
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/folio-cms/folio/cmd/folio/config"
)

// Log file names
const (
	InternalLogFile = "folio.log"
	AccessLogFile   = "access.log"
	ErrorLogFile    = "errors.log"
)

var accessLogWriter io.Writer = os.Stdout

// AccessLogWriter returns the writer for the http access log
func AccessLogWriter() io.Writer {
	return accessLogWriter
}

// Init initializes the logger from the loaded config
func Init() {
	if err := Setup(config.Get().Logging); err != nil {
		log.WithError(err).Fatal("could not initialize logger")
	}
}

// Setup configures the standard logger and the access log writer
func Setup(conf config.LoggingConf) error {
	level, err := log.ParseLevel(conf.Internal.Level)
	if err != nil {
		return errors.WithStack(err)
	}
	log.SetLevel(level)
	log.SetFormatter(
		&log.TextFormatter{
			FullTimestamp: true,
		},
	)
	log.SetOutput(newWriter(conf.Internal.LoggerConf, InternalLogFile, conf.Rotation, os.Stderr))
	accessLogWriter = newWriter(conf.Access, AccessLogFile, conf.Rotation, os.Stdout)

	if conf.Internal.Smart.Enabled {
		dir := conf.Internal.Smart.Dir
		if dir == "" {
			dir = conf.Internal.Dir
		}
		if dir == "" {
			return errors.New("smart logging requires a directory")
		}
		log.AddHook(
			&errorHook{
				writer:    rotatingFile(filepath.Join(dir, ErrorLogFile), conf.Rotation),
				formatter: &log.JSONFormatter{},
			},
		)
	}
	return nil
}

// newWriter returns the writer for a log: the log file in the configured
// directory and/or stderr; fallback is used when neither is configured
func newWriter(conf config.LoggerConf, filename string, rotation config.RotationConf, fallback io.Writer) io.Writer {
	var writers []io.Writer
	if conf.Dir != "" {
		writers = append(writers, rotatingFile(filepath.Join(conf.Dir, filename), rotation))
	}
	if conf.StdErr {
		writers = append(writers, os.Stderr)
	}
	switch len(writers) {
	case 0:
		return fallback
	case 1:
		return writers[0]
	default:
		return io.MultiWriter(writers...)
	}
}

func rotatingFile(path string, rotation config.RotationConf) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   rotation.Compress,
	}
}

// errorHook duplicates error entries into a separate writer
type errorHook struct {
	writer    io.Writer
	formatter log.Formatter
}

// Levels implements the log.Hook interface
func (*errorHook) Levels() []log.Level {
	return []log.Level{
		log.PanicLevel,
		log.FatalLevel,
		log.ErrorLevel,
	}
}

// Fire implements the log.Hook interface
func (h *errorHook) Fire(entry *log.Entry) error {
	data, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(data)
	return err
}

package util

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// InitLogger configures the shared logger. Production logs are JSON with the
// calling file and line; everything else uses the text formatter.
func InitLogger(level, env string) {
	Logger.SetReportCaller(true)
	Logger.Out = os.Stdout

	callerPrettyfier := func(f *runtime.Frame) (string, string) {
		return "", filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
	}

	if env == "production" {
		Logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  "2006-01-02T15:04:05Z07:00",
			CallerPrettyfier: callerPrettyfier,
		})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			CallerPrettyfier: callerPrettyfier,
		})
	}

	switch level {
	case "debug":
		Logger.SetLevel(logrus.DebugLevel)
	case "warn":
		Logger.SetLevel(logrus.WarnLevel)
	case "error":
		Logger.SetLevel(logrus.ErrorLevel)
	default:
		Logger.SetLevel(logrus.InfoLevel)
	}
}

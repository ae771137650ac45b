package logger

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	LOG_ENABLE              = "HPCJOB_LOGLEVEL"
	LOG_PATH                = "HPCJOB_LOGPATH"
	LOG_TIMEOUT             = "HPCJOB_LOGTIMEOUT"
	LOG_FILENAME            = "hpcjob.log"
	LOG_DEFAULT_TIMEOUT     = 24
	HPCJOB_DEBUG_LOGGING    = 10
	HPCJOB_INFO_LOGGING     = 20
	HPCJOB_WARNING_LOGGING  = 30
	HPCJOB_ERROR_LOGGING    = 40
	HPCJOB_CRITICAL_LOGGING = 50
)

var (
	Log = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	// levels are filtered by LogLevel, logrus passes everything through
	l.SetLevel(log.DebugLevel)
	return l
}

// Setup adds the log file under $HPCJOB_LOGPATH (default /tmp). A file whose
// first line is older than $HPCJOB_LOGTIMEOUT hours is started over.
func Setup() {
	logPath := os.TempDir()
	if env := os.Getenv(LOG_PATH); len(env) > 0 {
		logPath = env
	}
	timeout := LOG_DEFAULT_TIMEOUT
	if env := os.Getenv(LOG_TIMEOUT); len(env) > 0 {
		if t, err := strconv.Atoi(env); err == nil {
			timeout = t
		}
	}
	logfile := filepath.Join(logPath, LOG_FILENAME)
	if f, err := os.Open(logfile); err == nil {
		scanner := bufio.NewScanner(f)
		scanner.Scan()
		f.Close()
		tag, terr := time.Parse(time.RFC3339, scanner.Text())
		if terr != nil || int(time.Since(tag).Hours()) > timeout {
			if rerr := os.Remove(logfile); rerr != nil {
				Log.WithError(rerr).Warn("logger cannot rotate file")
			}
		}
	}
	f, err := os.OpenFile(logfile,
		os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		Log.WithError(err).Warn("logger cannot open file")
		return
	}
	if stat, serr := f.Stat(); serr == nil && stat.Size() == 0 {
		if _, werr := f.WriteString(time.Now().Format(time.RFC3339) + "\n"); werr != nil {
			Log.WithError(werr).Warn("logger cannot write file header")
		}
	}
	Log = newLogger(io.MultiWriter(os.Stderr, f))
}

func LogLevel() int {
	if env, err := strconv.Atoi(os.Getenv(LOG_ENABLE)); err == nil {
		return env
	}
	return HPCJOB_CRITICAL_LOGGING
}

func enabled(level int) bool {
	return LogLevel() <= level
}

func logObj(level int, name string, v interface{}) {
	if !enabled(level) {
		return
	}
	data, err := json.MarshalIndent(v, "", " ")
	if err != nil {
		logf(level, "%s: cannot marshal %T: %v", name, v, err)
		return
	}
	logf(level, "%s:\n%s", name, data)
}

func logf(level int, format string, a ...interface{}) {
	if !enabled(level) {
		return
	}
	switch {
	case level <= HPCJOB_DEBUG_LOGGING:
		Log.Debugf(format, a...)
	case level <= HPCJOB_INFO_LOGGING:
		Log.Infof(format, a...)
	case level <= HPCJOB_WARNING_LOGGING:
		Log.Warnf(format, a...)
	case level <= HPCJOB_ERROR_LOGGING:
		Log.Errorf(format, a...)
	default:
		// logrus Fatal exits the process
		Log.WithField("critical", true).Errorf(format, a...)
	}
}

func DebugObj(name string, v interface{}) {
	logObj(HPCJOB_DEBUG_LOGGING, name, v)
}

func DebugPrintf(format string, a ...interface{}) {
	logf(HPCJOB_DEBUG_LOGGING, format, a...)
}

func InfoObj(name string, v interface{}) {
	logObj(HPCJOB_INFO_LOGGING, name, v)
}

func InfoPrintf(format string, a ...interface{}) {
	logf(HPCJOB_INFO_LOGGING, format, a...)
}

func WarningObj(name string, v interface{}) {
	logObj(HPCJOB_WARNING_LOGGING, name, v)
}

func WarningPrintf(format string, a ...interface{}) {
	logf(HPCJOB_WARNING_LOGGING, format, a...)
}

func ErrorObj(name string, v interface{}) {
	logObj(HPCJOB_ERROR_LOGGING, name, v)
}

func ErrorPrintf(format string, a ...interface{}) {
	logf(HPCJOB_ERROR_LOGGING, format, a...)
}

func CriticalObj(name string, v interface{}) {
	logObj(HPCJOB_CRITICAL_LOGGING, name, v)
}

func CriticalPrintf(format string, a ...interface{}) {
	logf(HPCJOB_CRITICAL_LOGGING, format, a...)
}

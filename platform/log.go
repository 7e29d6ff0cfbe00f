package platform

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the application logger. It writes to stderr until InitAppLogger adds a file.
var Logger = newLogger()

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&LogFormatter{})
	logger.SetOutput(os.Stderr)
	return logger
}

// Hook appends every entry to <logPath>/<date>/<fileName>.log and rolls over at midnight.
type Hook struct {
	mu       sync.Mutex
	writer   *os.File
	logPath  string
	fileName string
	fileDate string
}

func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *Hook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	today := time.Now().Format("2006-01-02")
	if h.writer == nil || h.fileDate != today {
		if h.writer != nil {
			h.writer.Close()
		}
		writer, err := openDailyFile(h.logPath, today, h.fileName)
		if err != nil {
			return err
		}
		h.writer = writer
		h.fileDate = today
	}
	_, err = h.writer.Write([]byte(line))
	return err
}

func openDailyFile(logPath, date, fileName string) (*os.File, error) {
	dir := fmt.Sprintf("%s/%s", logPath, date)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("%s/%s.log", dir, fileName)
	return os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
}

type LogFormatter struct {
}

func (m *LogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05.000")
	b.WriteString(fmt.Sprintf("[%s] [%s] %s\n", timestamp, entry.Level, entry.Message))
	return b.Bytes(), nil
}

// InitFile routes the standard logrus logger (used by gin middleware) into daily files.
func InitFile(logPath string, fileName string) {
	logrus.SetFormatter(&LogFormatter{})
	logrus.AddHook(&Hook{logPath: logPath, fileName: fileName})
}

// InitAppLogger makes Logger write to stderr and a dated file under logPath.
func InitAppLogger(logPath string, fileName string) error {
	if err := os.MkdirAll(logPath, os.ModePerm); err != nil {
		return err
	}
	timer := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s/%s-%s.log", logPath, timer, fileName)
	logFile, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		return err
	}
	Logger.SetOutput(io.MultiWriter(logFile, os.Stderr))
	return nil
}

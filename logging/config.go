package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const logFilePrefix = "status-"

var numberedFileRe = regexp.MustCompile(`^status-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingLogger writes to one log file per ISO week, starting a numbered
// file when the size limit is reached, and removes files past retention
type RotatingLogger struct {
	logDir      string
	currentFile *os.File
	currentWeek string
	retention   time.Duration
	maxFileSize int64
	currentSize atomic.Int64
	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	cleanupDone chan struct{}
	cleanupOnce sync.Once
}

// NewRotatingLogger creates a new rotating logger instance
func NewRotatingLogger(logDir string, retentionWeeks int) *RotatingLogger {
	return NewRotatingLoggerWithSizeLimit(logDir, retentionWeeks, 100*1024*1024) // Default 100MB
}

// NewRotatingLoggerWithSizeLimit creates a new rotating logger with custom size limit
func NewRotatingLoggerWithSizeLimit(logDir string, retentionWeeks int, maxFileSize int64) *RotatingLogger {
	ctx, cancel := context.WithCancel(context.Background())
	return &RotatingLogger{
		logDir:      logDir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		ctx:         ctx,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}
}

// getWeekKey returns the week key in YYYY-Www format (ISO week)
func getWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// doRotate opens the file to write to for targetWeek (caller must hold mu)
func (rl *RotatingLogger) doRotate(targetWeek string) error {
	if rl.currentFile != nil {
		if err := rl.currentFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file during rotation: %v\n", err)
		}
		rl.currentFile = nil
	}

	sizeRotation := rl.currentWeek == targetWeek && rl.maxFileSize > 0 && rl.currentSize.Load() >= rl.maxFileSize
	fileName := rl.pickLogFile(targetWeek, sizeRotation)

	logPath := filepath.Join(rl.logDir, fileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	rl.currentFile = file
	rl.currentWeek = targetWeek
	rl.currentSize.Store(0)
	if info, err := file.Stat(); err == nil {
		rl.currentSize.Store(info.Size())
	}

	return nil
}

// pickLogFile returns the name of the file to append to for targetWeek
func (rl *RotatingLogger) pickLogFile(targetWeek string, sizeRotation bool) string {
	baseName := logFilePrefix + targetWeek + ".log"

	highest, lastSize := rl.highestNumberedFile(targetWeek)

	if highest == 0 && !sizeRotation {
		info, err := os.Stat(filepath.Join(rl.logDir, baseName))
		if err != nil || rl.maxFileSize == 0 || info.Size() < rl.maxFileSize {
			return baseName
		}
	}

	if highest > 0 && !sizeRotation && lastSize < rl.maxFileSize {
		return fmt.Sprintf("%s%s_%02d.log", logFilePrefix, targetWeek, highest)
	}

	return fmt.Sprintf("%s%s_%02d.log", logFilePrefix, targetWeek, highest+1)
}

// highestNumberedFile finds the last size-rotated file of a week
func (rl *RotatingLogger) highestNumberedFile(targetWeek string) (int, int64) {
	matches, _ := filepath.Glob(filepath.Join(rl.logDir, logFilePrefix+targetWeek+"_??.log"))

	highest := 0
	var size int64

	for _, match := range matches {
		m := numberedFileRe.FindStringSubmatch(filepath.Base(match))
		if len(m) < 2 {
			continue
		}

		num, _ := strconv.Atoi(m[1])
		if num <= highest {
			continue
		}

		highest = num
		size = 0
		if info, err := os.Stat(match); err == nil {
			size = info.Size()
		}
	}

	return highest, size
}

// Write writes data to the current log file
func (rl *RotatingLogger) Write(p []byte) (n int, err error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	week := getWeekKey(time.Now())
	needsRotation := rl.currentFile == nil || rl.currentWeek != week

	if !needsRotation && rl.maxFileSize > 0 {
		size := rl.currentSize.Load()
		if size > 0 && size+int64(len(p)) > rl.maxFileSize {
			rl.currentSize.Store(rl.maxFileSize)
			needsRotation = true
		}
	}

	if needsRotation {
		if err = rl.doRotate(week); err != nil {
			return 0, err
		}
	}

	n, err = rl.currentFile.Write(p)
	rl.currentSize.Add(int64(n))
	return n, err
}

// cleanupOldLogs removes log files older than the retention period
func (rl *RotatingLogger) cleanupOldLogs() error {
	entries, err := os.ReadDir(rl.logDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := time.Now().Add(-rl.retention)
	deleted := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(rl.logDir, name)); err == nil {
				deleted++
			}
		}
	}

	if deleted > 0 {
		// console only, logging here would recurse into Write
		fmt.Printf("Cleaned up %d old log files\n", deleted)
	}

	return nil
}

// startCleanup removes expired files once a day until Close is called
func (rl *RotatingLogger) startCleanup() {
	rl.cleanupOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(24 * time.Hour)
			defer ticker.Stop()
			defer close(rl.cleanupDone)

			for {
				select {
				case <-rl.ctx.Done():
					return
				case <-ticker.C:
					if err := rl.cleanupOldLogs(); err != nil {
						fmt.Fprintf(os.Stderr, "failed to cleanup old logs: %v\n", err)
					}
				}
			}
		}()
	})
}

// Close stops background cleanup and closes the current file
func (rl *RotatingLogger) Close() error {
	rl.cancel()

	started := true
	rl.cleanupOnce.Do(func() { started = false })
	if started {
		select {
		case <-rl.cleanupDone:
		case <-time.After(5 * time.Second):
			fmt.Fprintln(os.Stderr, "Warning: log cleanup goroutine did not stop in time")
		}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.currentFile != nil {
		err := rl.currentFile.Close()
		rl.currentFile = nil
		return err
	}
	return nil
}

// SetupLogger builds a logger writing text to the console and JSON to a rotating
// file in logDir. With an empty logDir, or when the directory cannot be used, it
// logs to the console only and the returned RotatingLogger is nil.
func SetupLogger(logDir string, consoleLevel, fileLevel slog.Level, retentionWeeks int, maxFileSize int64) (*slog.Logger, *RotatingLogger) {
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: consoleLevel,
	})

	if logDir == "" {
		return slog.New(consoleHandler), nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to create logs directory", "error", err)
		return logger, nil
	}

	rotating := NewRotatingLoggerWithSizeLimit(logDir, retentionWeeks, maxFileSize)

	rotating.mu.Lock()
	err := rotating.doRotate(getWeekKey(time.Now()))
	rotating.mu.Unlock()
	if err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to initialize rotating logger", "error", err)
		return logger, nil
	}

	rotating.startCleanup()

	fileHandler := slog.NewJSONHandler(rotating, &slog.HandlerOptions{
		Level: fileLevel,
	})

	return slog.New(&multiHandler{
		handlers: []slog.Handler{consoleHandler, fileHandler},
	}), rotating
}

// multiHandler fans records out to several handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

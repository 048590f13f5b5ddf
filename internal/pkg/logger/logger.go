package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options — куда и с каким уровнем писать логи.
type Options struct {
	// File — путь к файлу логов. Каталог создаётся при необходимости; пустой путь — только консоль.
	File string
	// Level — debug, info, warn (warning), error. Неизвестный уровень трактуется как info.
	Level string
	// Console дублирует вывод в stderr.
	Console bool
}

// openFile открывает файл логов на дозапись. При ошибке возвращает nil.
func openFile(path string) *os.File {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil
	}
	return f
}

// logWriter возвращает writer в файл и, если нужно, в stderr.
// Если файл открыть не удалось, пишет только в stderr.
func logWriter(opts Options) (io.Writer, func() error) {
	f := openFile(opts.File)
	switch {
	case f == nil:
		return os.Stderr, func() error { return nil }
	case opts.Console:
		return io.MultiWriter(f, os.Stderr), f.Close
	default:
		return f, f.Close
	}
}

// ParseLevel переводит имя уровня в slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New возвращает текстовый логгер по опциям и функцию закрытия файла логов.
func New(opts Options) (*slog.Logger, func() error) {
	w, closeFn := logWriter(opts)
	log := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	}))
	return log, closeFn
}

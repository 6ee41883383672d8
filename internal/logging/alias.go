package logging

import (
	"log/slog"
	"time"
)

// Constants for log levels (aliases from slog).
const (
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelDebug = slog.LevelDebug
)

// Type aliases for slog types.
type (
	Logger         = slog.Logger
	Attr           = slog.Attr
	Level          = slog.Level
	Handler        = slog.Handler
	HandlerOptions = slog.HandlerOptions
)

// Handler constructors and global functions (aliases from slog).
var (
	NewTextHandler = slog.NewTextHandler
	NewJSONHandler = slog.NewJSONHandler
	New            = slog.New
	SetDefault     = slog.SetDefault

	StringAttr   = slog.String
	BoolAttr     = slog.Bool
	Float64Attr  = slog.Float64
	AnyAttr      = slog.Any
	DurationAttr = slog.Duration
	IntAttr      = slog.Int
	Int64Attr    = slog.Int64
)

// TimeAttr formats time.Time to a string attribute.
func TimeAttr(key string, t time.Time) Attr {
	return slog.String(key, t.String())
}

// ErrAttr creates an error attribute. Handles nil errors.
func ErrAttr(err error) Attr {
	if err == nil {
		return slog.String("error", "error is nil")
	}
	return slog.String("error", err.Error())
}

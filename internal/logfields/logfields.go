// internal/logfields/logfields.go

// Package logfields keeps slog attribute keys consistent across packages.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field names shared by the builder, watcher and server.
const (
	KeyPath       = "path"
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyOp         = "op"
	KeyError      = "error"
)

func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

func BuildID(id string) slog.Attr { return slog.String(KeyBuildID, id) }

func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }

func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }

func Op(op string) slog.Attr { return slog.String(KeyOp, op) }

// Duration is reported in fractional milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

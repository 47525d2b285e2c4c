package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyTask       = "task"
	KeyRunID      = "run_id"
	KeyPath       = "path"
	KeyGlob       = "glob"
	KeyDest       = "dest"
	KeyFiles      = "files"
	KeyPort       = "port"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Task(name string) slog.Attr      { return slog.String(KeyTask, name) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Glob(g string) slog.Attr         { return slog.String(KeyGlob, g) }
func Dest(d string) slog.Attr         { return slog.String(KeyDest, d) }
func Files(n int) slog.Attr           { return slog.Int(KeyFiles, n) }
func Port(p int) slog.Attr            { return slog.Int(KeyPort, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

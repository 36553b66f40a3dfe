// Package cli holds the flag and logging setup shared by the commands.
package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"supplier-dashboard/internal/db"
)

// StoreFlags binds the store selection flags to a flag set. Defaults come
// from the environment.
type StoreFlags struct {
	cfg db.Config
}

func NewStoreFlags(fs *pflag.FlagSet) *StoreFlags {
	f := &StoreFlags{cfg: db.FromEnv()}
	fs.StringVar(&f.cfg.Driver, "driver", f.cfg.Driver, "store driver: sqlite or mysql")
	fs.StringVar(&f.cfg.Path, "db", f.cfg.Path, "SQLite database file path")
	return f
}

func (f *StoreFlags) Config() db.Config { return f.cfg }

// NewLogger returns a text logger on stderr at the level named by LOG_LEVEL.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: ParseLevel(os.Getenv("LOG_LEVEL"))}))
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Package logging is the compiler's one seam onto commonlog, the facade
// chazu/maggie's language server (server/lsp.go) logs through
// (commonlog.NewInfoMessage(0, "...")). No other package in this module
// calls fmt.Println or the log standard library directly for diagnostics.
package logging

import (
	"fmt"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/gfour/souffle/config"
)

// Configure installs commonlog's simple backend at the verbosity named by
// cfg. It must run once, before any package logs through this file.
func Configure(cfg config.LoggingConfig) {
	commonlog.Configure(verbosityFor(cfg.Level), nil)
}

func verbosityFor(level string) int {
	switch level {
	case "error":
		return 0
	case "warn":
		return 1
	case "info":
		return 2
	case "debug":
		return 3
	default:
		return 2
	}
}

// Log is a named logging seam, one per package that wants to log
// (mirroring commonlog's hierarchical logger names: "ramc", "codegen",
// "cache", ...). It wraps commonlog's NewXMessage family, firing a
// message at a fixed verbosity depth without holding onto a per-call
// Logger reference.
type Log struct {
	name string
}

// Named returns the seam for a given component name.
func Named(name string) Log { return Log{name: name} }

func (l Log) Debug(format string, args ...interface{}) {
	if msg := commonlog.NewDebugMessage(1, l.name); msg != nil {
		msg.Set("_message", fmt.Sprintf(format, args...)).Send()
	}
}

func (l Log) Info(format string, args ...interface{}) {
	if msg := commonlog.NewInfoMessage(1, l.name); msg != nil {
		msg.Set("_message", fmt.Sprintf(format, args...)).Send()
	}
}

func (l Log) Warning(format string, args ...interface{}) {
	if msg := commonlog.NewWarningMessage(1, l.name); msg != nil {
		msg.Set("_message", fmt.Sprintf(format, args...)).Send()
	}
}

func (l Log) Error(format string, args ...interface{}) {
	if msg := commonlog.NewErrorMessage(1, l.name); msg != nil {
		msg.Set("_message", fmt.Sprintf(format, args...)).Send()
	}
}

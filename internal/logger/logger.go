// This file is part of aarch64emu.
//
// aarch64emu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// aarch64emu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with aarch64emu.  If not, see <https://www.gnu.org/licenses/>.

// Package logger is a small tag-based logger in the style of the emulation
// harness it was lifted from: every message carries a short tag ("ELF",
// "MMU", "SYSCALL") and a Style that a terminal renders as a colour. There is
// a single debug flag (see Enable/Disable) that gates informational output;
// failures always print regardless of the flag, per the propagation policy
// of the syscall dispatcher.
package logger

import (
	"fmt"
	"os"
)

// Style identifies the category of a logged message. The terminal
// implementation (here, a plain ANSI-colour writer to stderr) interprets
// this how it sees fit.
type Style int

const (
	// StyleInfo is routine, debug-gated informational output.
	StyleInfo Style = iota

	// StyleWarn is a recoverable anomaly worth flagging even when debug
	// logging is off.
	StyleWarn

	// StyleError is failure output. Always printed.
	StyleError
)

const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	gray   = "\033[37m"
)

func colorFor(s Style) string {
	switch s {
	case StyleWarn:
		return yellow
	case StyleError:
		return red
	default:
		return gray
	}
}

var debugEnabled = false

// Enable turns on informational (StyleInfo) logging. Corresponds to the
// single `debug` flag referenced throughout the syscall dispatcher.
func Enable() { debugEnabled = true }

// Disable turns informational logging back off.
func Disable() { debugEnabled = false }

// Debug reports whether informational logging is currently enabled.
func Debug() bool { return debugEnabled }

// Logf prints an informational message tagged with tag. Suppressed unless
// debug logging has been enabled.
func Logf(tag, format string, a ...interface{}) {
	if !debugEnabled {
		return
	}
	logStyled(StyleInfo, tag, format, a...)
}

// Warnf prints a warning. Always printed.
func Warnf(tag, format string, a ...interface{}) {
	logStyled(StyleWarn, tag, format, a...)
}

// Errorf prints a failure. Always printed, per §7: "failures always print".
func Errorf(tag, format string, a ...interface{}) {
	logStyled(StyleError, tag, format, a...)
}

func logStyled(style Style, tag, format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	fmt.Fprintf(os.Stderr, "%s[%s] %s%s\n", colorFor(style), tag, msg, reset)
}

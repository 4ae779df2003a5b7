// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Logger defines the interface for logging operations.
// It provides methods for different log levels and formatted output.
//
// Diagnostics go to stderr so the encoded bundle on stdout stays clean for
// redirection into a trust-anchor file.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled, writing
// to stderr.
func NewCLILogger() *CLILogger {
	l := log.New(os.Stderr, "", 0)
	return &CLILogger{logger: l}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// ColorLogger implements Logger with ANSI-colored leveled output for debug
// diagnostics. Plain Printf/Println output is uncolored; the leveled
// helpers color by severity the way administrators expect from the
// retriever's debug mode.
//
// ColorLogger is safe for concurrent use by multiple goroutines.
type ColorLogger struct {
	mu     sync.Mutex
	writer io.Writer

	info    *color.Color
	success *color.Color
	warn    *color.Color
	fail    *color.Color
}

// NewColorLogger creates a new color logger writing to stderr.
func NewColorLogger() *ColorLogger {
	return &ColorLogger{
		writer:  os.Stderr,
		info:    color.New(color.FgBlue),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
	}
}

// Printf formats and prints an uncolored log message.
func (c *ColorLogger) Printf(format string, v ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.writer, format, v...)
}

// Println prints an uncolored log message with a newline.
func (c *ColorLogger) Println(v ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.writer, v...)
}

// SetOutput sets the output destination for the color logger.
func (c *ColorLogger) SetOutput(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if w == nil {
		c.writer = io.Discard
	} else {
		c.writer = w
	}
}

// Infof prints an informational (blue) message with a trailing newline.
func (c *ColorLogger) Infof(format string, v ...any) { c.levelf(c.info, format, v...) }

// Successf prints a success (green) message with a trailing newline.
func (c *ColorLogger) Successf(format string, v ...any) { c.levelf(c.success, format, v...) }

// Warnf prints a warning (yellow) message with a trailing newline.
func (c *ColorLogger) Warnf(format string, v ...any) { c.levelf(c.warn, format, v...) }

// Errorf prints an error (red) message with a trailing newline.
func (c *ColorLogger) Errorf(format string, v ...any) { c.levelf(c.fail, format, v...) }

func (c *ColorLogger) levelf(col *color.Color, format string, v ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	col.Fprintf(c.writer, format+"\n", v...)
}

/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package logger is a thin structured-logging facade over logrus, sized
// to what the reactor's core packages (eventloop, dispatch, client) and
// reactord actually call: leveled entries with an optional error and a
// handful of printf-style args, nothing else.
package logger

import (
	loglvl "github.com/nabbar/reactor/logger/level"
)

// FuncLog returns a Logger instance. Core packages take a FuncLog rather
// than a Logger directly so the logger can be swapped or lazily built
// after the package's own options are parsed.
type FuncLog func() Logger

// Logger is the logging surface the reactor depends on. data is typically
// an error (connection-fatal paths) or nil (informational paths); args
// are applied to message with fmt.Sprintf before the entry is emitted.
type Logger interface {
	SetLevel(lvl loglvl.Level)
	GetLevel() loglvl.Level

	Debug(message string, data interface{}, args ...interface{})
	Info(message string, data interface{}, args ...interface{})
	Warning(message string, data interface{}, args ...interface{})
	Error(message string, data interface{}, args ...interface{})
	Fatal(message string, data interface{}, args ...interface{})
}

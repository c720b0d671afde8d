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

package logger

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"

	loglvl "github.com/nabbar/reactor/logger/level"
)

type lgr struct {
	mu  sync.RWMutex
	lvl loglvl.Level
	log *logrus.Logger
	ctx context.Context
}

func defaultFormatter() *logrus.TextFormatter {
	return &logrus.TextFormatter{
		ForceColors:      true,
		FullTimestamp:    true,
		TimestampFormat:  time.RFC3339,
		DisableSorting:   false,
		QuoteEmptyFields: true,
	}
}

// New returns a Logger that keeps ctx; the Logger does not watch ctx and
// keeps logging after it is cancelled. The default level is InfoLevel and output
// goes to stderr through go-colorable so colored output survives on
// Windows terminals too.
func New(ctx context.Context) Logger {
	l := logrus.New()
	l.SetOutput(colorable.NewColorable(os.Stderr))
	l.SetFormatter(defaultFormatter())
	l.SetLevel(loglvl.InfoLevel.Logrus())

	return &lgr{
		lvl: loglvl.InfoLevel,
		log: l,
		ctx: ctx,
	}
}

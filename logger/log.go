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
	"fmt"

	"github.com/sirupsen/logrus"

	loglvl "github.com/nabbar/reactor/logger/level"
)

func (o *lgr) SetLevel(lvl loglvl.Level) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.lvl = lvl
	o.log.SetLevel(lvl.Logrus())
}

func (o *lgr) GetLevel() loglvl.Level {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.lvl
}

func (o *lgr) entry(message string, data interface{}, args []interface{}) (*logrus.Entry, string) {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}

	e := o.log.WithField("component", "reactor")

	switch v := data.(type) {
	case nil:
		// no extra field
	case error:
		e = e.WithError(v)
	default:
		e = e.WithField("data", v)
	}

	return e, message
}

func (o *lgr) Debug(message string, data interface{}, args ...interface{}) {
	e, msg := o.entry(message, data, args)
	e.Debug(msg)
}

func (o *lgr) Info(message string, data interface{}, args ...interface{}) {
	e, msg := o.entry(message, data, args)
	e.Info(msg)
}

func (o *lgr) Warning(message string, data interface{}, args ...interface{}) {
	e, msg := o.entry(message, data, args)
	e.Warn(msg)
}

func (o *lgr) Error(message string, data interface{}, args ...interface{}) {
	e, msg := o.entry(message, data, args)
	e.Error(msg)
}

func (o *lgr) Fatal(message string, data interface{}, args ...interface{}) {
	e, msg := o.entry(message, data, args)
	e.Fatal(msg)
}

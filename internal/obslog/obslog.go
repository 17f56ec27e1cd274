// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package obslog is the structured logging facade of this module, a thin
// wrapper over github.com/joeycumines/logiface. The harness builds a Logger
// and hands it to the scheduler; no unit worker takes one. Soft failures (a
// missing file, an invalid handle, a bad pipeline id) are not logged by any
// unit or by the scheduler: they leave the sentinel values documented for
// each action and execution continues.
package obslog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/joeycumines/logiface"
)

// Logger wraps a logiface.Logger[logiface.Event] bound to a textEvent
// factory, giving every caller in this module the same Warn/Info/Error
// vocabulary without needing to name the concrete Event type.
type Logger struct {
	inner *logiface.Logger[logiface.Event]
}

// New returns a Logger writing line-oriented "key=value" records to w at or
// above level. A nil w defaults to os.Stderr.
func New(w io.Writer, level logiface.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	factory := logiface.NewEventFactoryFunc[logiface.Event](func(lvl logiface.Level) logiface.Event {
		return &textEvent{lvl: lvl}
	})
	writer := logiface.NewWriterFunc[logiface.Event](func(e logiface.Event) error {
		te := e.(*textEvent)
		_, err := io.WriteString(w, te.render())
		return err
	})
	inner := logiface.New[logiface.Event](
		logiface.L.WithLevel(level),
		logiface.L.WithEventFactory(factory),
		logiface.L.WithWriter(writer),
	)
	return &Logger{inner: inner}
}

// Default returns a Logger at Warning level writing to os.Stderr, the
// Logger scheduler.New falls back to when its Config carries none.
func Default() *Logger {
	return New(os.Stderr, logiface.LevelWarning)
}

// Warn logs a soft-failure per §7: it never aborts the action, it only
// records that the sentinel path was taken.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(logiface.LevelWarning, msg, fields)
}

// Info logs a non-error lifecycle event (unit started, runtime shut down).
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(logiface.LevelInformational, msg, fields)
}

// Error logs a condition that accompanies a returned actionrt.Error — the
// caller decides whether to surface it; this just records it alongside.
func (l *Logger) Error(msg string, fields ...Field) {
	l.log(logiface.LevelError, msg, fields)
}

func (l *Logger) log(level logiface.Level, msg string, fields []Field) {
	if l == nil || l.inner == nil {
		return
	}
	b := l.inner.Build(level)
	for _, f := range fields {
		b = b.Interface(f.Key, f.Value)
	}
	b.Log(msg)
}

// Field is one structured key/value attached to a log line.
type Field struct {
	Key   string
	Value any
}

// F builds a Field; kept terse since call sites pass several per line.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// textEvent is the minimal logiface.Event implementation: a growable byte
// buffer rendered as "time level msg key=value ...\n" on Log().
type textEvent struct {
	logiface.UnimplementedEvent
	mu     sync.Mutex
	lvl    logiface.Level
	msg    string
	fields []Field
}

func (e *textEvent) Level() logiface.Level { return e.lvl }

func (e *textEvent) AddField(key string, val any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fields = append(e.fields, Field{Key: key, Value: val})
}

func (e *textEvent) AddMessage(msg string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msg = msg
	return true
}

func (e *textEvent) AddString(key, val string) bool {
	e.AddField(key, val)
	return true
}

func (e *textEvent) AddError(err error) bool {
	if err != nil {
		e.AddField("error", err.Error())
	}
	return true
}

func (e *textEvent) render() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := fmt.Sprintf("%s %s %s", time.Now().UTC().Format(time.RFC3339Nano), levelName(e.lvl), e.msg)
	for _, f := range e.fields {
		out += fmt.Sprintf(" %s=%v", f.Key, f.Value)
	}
	return out + "\n"
}

func levelName(l logiface.Level) string {
	switch l {
	case logiface.LevelEmergency:
		return "emerg"
	case logiface.LevelAlert:
		return "alert"
	case logiface.LevelCritical:
		return "crit"
	case logiface.LevelError:
		return "error"
	case logiface.LevelWarning:
		return "warn"
	case logiface.LevelNotice:
		return "notice"
	case logiface.LevelInformational:
		return "info"
	case logiface.LevelDebug:
		return "debug"
	case logiface.LevelTrace:
		return "trace"
	default:
		return "disabled"
	}
}

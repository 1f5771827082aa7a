// Package logger builds the structured logging sink the scheduler accepts,
// wrapping logrus the way the teacher repo's logger package does — the
// scheduler itself never constructs a log handler, only consumes one.
package logger

import "github.com/sirupsen/logrus"

// Sink is the logging interface the scheduler relies on: two methods
// receiving already-formatted strings, per the scheduler's documented
// contract.
type Sink interface {
	Info(text string)
	Error(text string)
}

// New returns a Sink backed by a named logrus.Entry. name tags every
// emitted line as a "component" field, mirroring how the teacher's
// logger.New("scheduler-manager") tags its background services.
func New(name string) Sink {
	entry := logrus.New().WithField("component", name)
	return &logrusSink{entry: entry}
}

type logrusSink struct {
	entry *logrus.Entry
}

func (s *logrusSink) Info(text string)  { s.entry.Info(text) }
func (s *logrusSink) Error(text string) { s.entry.Error(text) }

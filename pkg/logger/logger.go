// Package logger wraps logrus with the fields this service logs on most
// lines (request id, user id, error) and a few domain events.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is a logrus entry carrying accumulated fields.
type Logger struct {
	*logrus.Entry
}

// Options selects output format and level.
type Options struct {
	Level  string // debug, info, warn, error
	JSON   bool
	Output io.Writer // defaults to stdout
}

// New creates a root logger.
func New(opts Options) *Logger {
	l := logrus.New()
	l.SetLevel(ParseLevel(opts.Level))
	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stdout)
	}
	return &Logger{Entry: logrus.NewEntry(l)}
}

// Nop discards everything.  Used by tests and optional collaborators.
func Nop() *Logger {
	return New(Options{Level: "error", Output: io.Discard})
}

// ParseLevel maps a level name to logrus, defaulting to info.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	}
	return logrus.InfoLevel
}

func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{Entry: l.Entry.WithField("request_id", id)}
}

func (l *Logger) WithUserID(id uint64) *Logger {
	return &Logger{Entry: l.Entry.WithField("user_id", id)}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{Entry: l.Entry.WithError(err)}
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{Entry: l.Entry.WithFields(logrus.Fields(fields))}
}

func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Entry: l.Entry.WithField("component", name)}
}

// LogScheduleCreated records a new schedule and its class capacities.
func (l *Logger) LogScheduleCreated(scheduleID, trainName string, firstCap, secondCap int) {
	l.Entry.WithFields(logrus.Fields{
		"schedule_id":     scheduleID,
		"train_name":      trainName,
		"first_capacity":  firstCap,
		"second_capacity": secondCap,
	}).Info("schedule created")
}

func (l *Logger) LogScheduleDeleted(scheduleID uint64) {
	l.Entry.WithField("schedule_id", scheduleID).Info("schedule deleted")
}

// LogBookingSubmitted records a booking handed to the queue.
func (l *Logger) LogBookingSubmitted(reference, scheduleID, class string, tickets int) {
	l.Entry.WithFields(logrus.Fields{
		"reference":    reference,
		"schedule_id":  scheduleID,
		"travel_class": class,
		"tickets":      tickets,
	}).Info("booking submitted")
}

// LogBookingRejected records a builder rejection.  These are user errors,
// so they are logged at debug.
func (l *Logger) LogBookingRejected(state, reason string) {
	l.Entry.WithFields(logrus.Fields{"state": state, "reason": reason}).Debug("booking rejected")
}

func (l *Logger) LogAuthSuccess(userID uint64, email string) {
	l.Entry.WithFields(logrus.Fields{"user_id": userID, "email": email}).Info("sign in succeeded")
}

func (l *Logger) LogAuthFailure(email, reason string) {
	l.Entry.WithFields(logrus.Fields{"email": email, "reason": reason}).Warn("sign in failed")
}

func (l *Logger) LogRateLimited(key, path string) {
	l.Entry.WithFields(logrus.Fields{"key": key, "path": path}).Warn("rate limited")
}

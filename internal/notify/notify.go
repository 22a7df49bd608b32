// Package notify is the UI boundary for store failures: it logs the raw fault
// and shows the user one generic notice.
package notify

import (
	"errors"

	"github.com/labstack/gommon/log"

	"github.com/cookfile-viewer/backend/internal/inflight"
	"github.com/cookfile-viewer/backend/internal/remote"
)

// GenericNotice is shown for every fault, whatever its kind.
const GenericNotice = "An error occurred.  Try again later."

// Notifier displays a message to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Reporter receives the failures of user actions.
type Reporter interface {
	Report(op string, err error)
}

// LogReporter logs faults and notifies the user.
type LogReporter struct {
	logger   *log.Logger
	notifier Notifier
}

// NewLogReporter creates a reporter. A nil notifier only logs.
func NewLogReporter(logger *log.Logger, n Notifier) *LogReporter {
	if logger == nil {
		logger = log.New("notify")
		logger.SetLevel(log.OFF)
	}
	return &LogReporter{logger: logger, notifier: n}
}

// Report logs err with its kind and raw value. Rejected duplicates are logged
// at debug and not shown to the user.
func (r *LogReporter) Report(op string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, inflight.ErrInFlight) {
		r.logger.Debugf("[%s] ignored: %v", op, err)
		return
	}

	var tf *remote.TransportFault
	var af *remote.ApplicationFault
	switch {
	case errors.As(err, &af):
		r.logger.Errorj(log.JSON{"op": op, "kind": "application", "request_id": af.RequestID, "response": remote.RawFault(err)})
	case errors.As(err, &tf):
		r.logger.Errorj(log.JSON{"op": op, "kind": "transport", "request_id": tf.RequestID, "status": tf.Status, "response": remote.RawFault(err)})
	default:
		r.logger.Errorj(log.JSON{"op": op, "kind": "local", "error": err.Error()})
	}

	if r.notifier != nil {
		r.notifier.Notify(GenericNotice)
	}
}

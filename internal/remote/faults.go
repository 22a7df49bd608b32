package remote

import (
	"errors"
	"fmt"
)

// TransportFault means the request never completed: the connection failed,
// the body could not be decoded, or the server answered a non-2xx status
// without a result marker.
type TransportFault struct {
	Op        string
	RequestID string
	Status    int // 0 when no response was received
	Err       error
}

func (f *TransportFault) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("%s: transport fault (status %d): %v", f.Op, f.Status, f.Err)
	}
	return fmt.Sprintf("%s: transport fault: %v", f.Op, f.Err)
}

func (f *TransportFault) Unwrap() error { return f.Err }

// ApplicationFault means the store answered but the result marker was not "OK".
type ApplicationFault struct {
	Op        string
	RequestID string
	Result    string // raw marker; empty when the marker was absent
	Missing   bool
}

func (f *ApplicationFault) Error() string {
	if f.Missing {
		return fmt.Sprintf("%s: application fault: response has no result marker", f.Op)
	}
	return fmt.Sprintf("%s: application fault: %s", f.Op, f.Result)
}

// IsFault reports whether err is a TransportFault or an ApplicationFault.
func IsFault(err error) bool {
	var tf *TransportFault
	var af *ApplicationFault
	return errors.As(err, &tf) || errors.As(err, &af)
}

// RawFault returns the diagnostic value of a fault: the raw result marker for
// application faults, the transport error text otherwise.
func RawFault(err error) string {
	var af *ApplicationFault
	if errors.As(err, &af) {
		if af.Missing {
			return "<no result>"
		}
		return af.Result
	}
	var tf *TransportFault
	if errors.As(err, &tf) && tf.Err != nil {
		return tf.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

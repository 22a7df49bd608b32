package notify

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"

	"github.com/cookfile-viewer/backend/internal/inflight"
	"github.com/cookfile-viewer/backend/internal/remote"
)

func newTestReporter() (*LogReporter, *bytes.Buffer, *[]string) {
	var buf bytes.Buffer
	logger := log.New("test")
	logger.SetOutput(&buf)
	logger.SetLevel(log.DEBUG)

	var notices []string
	r := NewLogReporter(logger, NotifierFunc(func(m string) { notices = append(notices, m) }))
	return r, &buf, &notices
}

func TestLogReporter_FaultKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
		raw  string
	}{
		{"application", &remote.ApplicationFault{Op: "edit_title", Result: "Title locked"}, `"kind":"application"`, "Title locked"},
		{"transport", &remote.TransportFault{Op: "edit_title", Err: errors.New("connection reset")}, `"kind":"transport"`, "connection reset"},
		{"local", errors.New("unknown comment"), `"kind":"local"`, "unknown comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, buf, notices := newTestReporter()
			r.Report("edit_title", tt.err)

			assert.Contains(t, buf.String(), tt.kind)
			assert.Contains(t, buf.String(), tt.raw)
			assert.Equal(t, []string{GenericNotice}, *notices)
		})
	}
}

func TestLogReporter_InFlightIsQuiet(t *testing.T) {
	r, buf, notices := newTestReporter()
	r.Report("comment_save", fmt.Errorf("comment_save/c1: %w", inflight.ErrInFlight))

	assert.Empty(t, *notices)
	assert.Contains(t, buf.String(), "ignored")
}

func TestLogReporter_Nil(t *testing.T) {
	r, buf, notices := newTestReporter()
	r.Report("x", nil)
	assert.Empty(t, *notices)
	assert.Empty(t, buf.String())

	// no notifier only logs
	NewLogReporter(nil, nil).Report("x", errors.New("boom"))
}

func TestGenericNotice(t *testing.T) {
	assert.Equal(t, "An error occurred.  Try again later.", GenericNotice)
}

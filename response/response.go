// Package response implements the two-phase delayed response: a
// builder that accumulates status and headers, then a one-way
// transition into a chunk sink once the body starts. Misuse of either
// phase from the wrong side of the transition is a programmer error
// and panics with a clear message, matching the Rust original's
// DelayedResponse::builder()/response_body() behaviour.
package response

import (
	"io"
	"net/http"
)

// Sink is the writable side of a started response: body bytes plus an
// explicit flush, mirroring the teacher's SSE writer's use of
// http.Flusher.
type Sink interface {
	io.Writer
	Flush()
}

// Delayed is the per-request two-phase response object. Exactly one of
// its phases is live at any moment: Waiting while the status/headers
// are still being accumulated, Started once the head has been
// committed and a Sink is available.
type Delayed struct {
	status  int
	header  http.Header
	started bool
	sink    Sink
}

// New returns a Delayed response in the Waiting phase with status 200
// and an empty header set, ready for a node to adjust before the head
// commits.
func New() *Delayed {
	return &Delayed{status: http.StatusOK, header: http.Header{}}
}

// Status returns the status currently staged for the head.
func (d *Delayed) Status() int { return d.status }

// SetStatus stages a status code for the eventual head. Panics if the
// response has already started.
func (d *Delayed) SetStatus(status int) {
	d.mustBeWaiting("SetStatus")
	d.status = status
}

// Header returns the header set staged for the eventual head. Panics
// if the response has already started.
func (d *Delayed) Header() http.Header {
	d.mustBeWaiting("Header")
	return d.header
}

// Started reports whether the response has transitioned to Started.
func (d *Delayed) Started() bool { return d.started }

// Start performs the one-way Waiting -> Started transition, recording
// the sink the engine will write the body to. Panics if called twice.
func (d *Delayed) Start(sink Sink) {
	if d.started {
		panic("response: Start called after response has already started")
	}
	d.started = true
	d.sink = sink
}

// Sink returns the writable body sink. Panics if the response has not
// started yet — mirrors the Rust original's response_body() panic.
func (d *Delayed) Sink() Sink {
	if !d.started {
		panic("response: Sink called before response has started")
	}
	return d.sink
}

func (d *Delayed) mustBeWaiting(op string) {
	if d.started {
		panic("response: " + op + " called after response has started")
	}
}

// Package transport bridges net/http to the engine's Request/Sink
// abstraction: the concrete "collaborator" spec.md treats abstractly.
// It owns exactly the translation the spec calls "commit head" — take
// the Waiting builder's status and headers, write them to the wire,
// and hand back a response.Sink for the body.
package transport

import (
	"net/http"

	"github.com/elena-brandt/httpresource/engine"
	"github.com/elena-brandt/httpresource/resource"
	"github.com/elena-brandt/httpresource/response"
)

// flusherSink adapts an http.ResponseWriter (asserted to http.Flusher,
// the same assumption the teacher's stream.Write makes for SSE) into a
// response.Sink.
type flusherSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s flusherSink) Write(b []byte) (int, error) { return s.w.Write(b) }

func (s flusherSink) Flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// Serve runs the decision flow for one HTTP request against res,
// committing the head to w the first time the engine needs to and
// streaming the body through w afterward. It returns the name of the
// terminal node (for metrics labels) alongside any handler error.
func Serve(w http.ResponseWriter, r *http.Request, res resource.Resource) (node string, err error) {
	commit := func(status int, header http.Header) response.Sink {
		dst := w.Header()
		for k, values := range header {
			for _, v := range values {
				dst.Add(k, v)
			}
		}
		w.WriteHeader(status)

		flusher, _ := w.(http.Flusher)
		return flusherSink{w: w, flusher: flusher}
	}

	return engine.Run(res, r, commit)
}

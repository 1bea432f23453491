// Package engine implements the outer loop that interprets the decision
// flow's Outcomes and delivers a committed response to the
// collaborator: the "engine runner" component of the decision flow
// engine, kept deliberately thin per spec — a trivial interpreter over
// the node functions in package flow.
package engine

import (
	"fmt"
	"net/http"
	"reflect"
	"runtime"
	"strings"

	"github.com/elena-brandt/httpresource/flow"
	"github.com/elena-brandt/httpresource/resource"
	"github.com/elena-brandt/httpresource/response"
)

// Committer materialises the response head (status + headers) exactly
// once and returns the sink the engine will write (or hand off) the
// body through. It is the collaborator hook spec.md's "commit head"
// wording refers to — a transport adapter's job, not the engine's.
type Committer func(status int, header http.Header) response.Sink

// Run drives resource through the fixed decision graph for one request
// and calls commit exactly once, on the first terminal outcome, per the
// spec's "commit is idempotent in the sense that only the first
// terminal outcome performs it" note. It returns the name of the node
// that produced the terminal outcome (for metrics/logging labels) along
// with any handler error.
func Run(res resource.Resource, r *http.Request, commit Committer) (node string, err error) {
	w := flow.NewWrapper(res, r)
	current := flow.Start()

	for {
		switch current.Kind {
		case flow.KindNext:
			node = nodeName(current.Next)
			current = current.Next(w)
			continue

		case flow.KindHalt:
			w.Response.SetStatus(current.Status)
			sink := commitOnce(w, commit)
			sink.Flush()
			return node, nil

		case flow.KindDone:
			w.Response.SetStatus(current.Status)
			sink := commitOnce(w, commit)
			sink.Flush()
			return node, nil

		case flow.KindOutput:
			sink := commitOnce(w, commit)
			if err := current.Output(res, sink); err != nil {
				return node, fmt.Errorf("engine: output handler: %w", err)
			}
			sink.Flush()
			return node, nil

		case flow.KindInput:
			sink := commitOnce(w, commit)
			if err := current.Input(res, r, sink); err != nil {
				return node, fmt.Errorf("engine: input handler: %w", err)
			}
			sink.Flush()
			return node, nil

		default:
			panic("engine: unreachable outcome kind")
		}
	}
}

// commitOnce performs the Waiting -> Started transition the first time
// it is called for a wrapper and is a no-op (returning the existing
// sink) on any subsequent call, satisfying invariant 2 ("Started is
// entered at most once per request").
func commitOnce(w *flow.Wrapper, commit Committer) response.Sink {
	if w.Response.Started() {
		return w.Response.Sink()
	}
	sink := commit(w.Response.Status(), w.Response.Header())
	w.Response.Start(sink)
	return sink
}

// nodeName derives a short, stable label (e.g. "B13", "makeL15.func1")
// from a flow.Node's function value, for the metrics CounterVec keyed
// by terminal node name. Every node in package flow is a named
// top-level function, so this is exact for all but the L15/L17 family
// (built by makeL15/makeL17 to close over the parsed If-Modified-Since
// timestamp), which resolves to the closure's own compiler-generated
// name — still identifies which family produced the halt.
func nodeName(n flow.Node) string {
	full := runtime.FuncForPC(reflect.ValueOf(n).Pointer()).Name()
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	if i := strings.Index(full, "."); i >= 0 {
		full = full[i+1:]
	}
	return full
}

// Package flow implements the fixed ~50-node HTTP decision graph: the
// same Webmachine v3 diagram the original Rust flow.rs walks, ported
// node-for-node where the source is complete, and resolved against the
// diagram directly (see DESIGN.md) where the source left edges as
// unimplemented!().
package flow

import (
	"net/http"
	"strings"

	"github.com/elena-brandt/httpresource/conneg"
	"github.com/elena-brandt/httpresource/resource"
	"github.com/elena-brandt/httpresource/response"
)

// Kind tags the shape of an Outcome.
type Kind int

const (
	// KindNext means the flow continues at another node.
	KindNext Kind = iota
	// KindHalt means the flow stops with a fixed status and no handler.
	KindHalt
	// KindDone means the flow stops with whatever status is already
	// staged on the response (used by POST-create's 201 and similar).
	KindDone
	// KindOutput means the flow stops by committing the head and
	// invoking a resource.OutputHandler against the started sink.
	KindOutput
	// KindInput means the flow stops by committing the head and
	// invoking a resource.InputHandler against the started sink.
	KindInput
)

// Node is one decision function: given the wrapper, it returns the next
// Outcome. Every node in the graph has this shape, which is what lets
// the engine's outer loop be a trivial interpreter (spec design note).
type Node func(w *Wrapper) Outcome

// Outcome is what a Node returns: either "go here next", or one of the
// four terminal shapes the engine runner understands.
type Outcome struct {
	Kind   Kind
	Next   Node
	Status int
	Output resource.OutputHandler
	Input  resource.InputHandler
}

func next(n Node) Outcome               { return Outcome{Kind: KindNext, Next: n} }
func halt(status int) Outcome           { return Outcome{Kind: KindHalt, Status: status} }
func done(status int) Outcome           { return Outcome{Kind: KindDone, Status: status} }
func output(h resource.OutputHandler) Outcome { return Outcome{Kind: KindOutput, Output: h} }
func input(h resource.InputHandler) Outcome   { return Outcome{Kind: KindInput, Input: h} }

// Negotiation holds the per-request negotiated values, threaded through
// the graph from the C–F nodes down to O18's handler lookup.
type Negotiation struct {
	MediaType string
	Charset   string
	Encoding  string
	Language  string

	// ResourceExisted is captured at G7 and consulted at P11 to tell a
	// PUT that creates (201) from one that updates (200/204).
	ResourceExisted bool
}

// Wrapper holds the per-request tuple: resource, request, delayed
// response and negotiation metadata, passed by pointer through every
// node (spec design note: "avoids globals, makes the engine trivially
// testable").
type Wrapper struct {
	Resource resource.Resource
	Request  *http.Request
	Response *response.Delayed
	Neg      Negotiation
}

// NewWrapper builds a fresh per-request Wrapper with a Waiting delayed
// response, ready to start the graph at B13.
func NewWrapper(res resource.Resource, r *http.Request) *Wrapper {
	return &Wrapper{
		Resource: res,
		Request:  r,
		Response: response.New(),
	}
}

// Start returns the entry Outcome for a fresh Wrapper: Next(B13).
func Start() Outcome {
	return next(B13)
}

// --- B: availability, method and request-shape checks ---

func B13(w *Wrapper) Outcome {
	if w.Resource.ServiceAvailable() {
		return next(B12)
	}
	return halt(http.StatusServiceUnavailable)
}

func B12(w *Wrapper) Outcome {
	if containsMethod(w.Resource.KnownMethods(), w.Request.Method) {
		return next(B11)
	}
	return halt(http.StatusNotImplemented)
}

func B11(w *Wrapper) Outcome {
	if w.Resource.URITooLong(w.Request.URL.Path) {
		return halt(http.StatusRequestURITooLong)
	}
	return next(B10)
}

func B10(w *Wrapper) Outcome {
	allowed := w.Resource.AllowedMethods()
	if containsMethod(allowed, w.Request.Method) {
		return next(B9)
	}
	w.Response.Header().Set("Allow", strings.Join(allowed, ", "))
	return halt(http.StatusMethodNotAllowed)
}

func B9(w *Wrapper) Outcome {
	if valid, present := w.Resource.ValidateContentChecksum(); present && !valid {
		return halt(http.StatusBadRequest)
	}
	if w.Resource.MalformedRequest() {
		return halt(http.StatusBadRequest)
	}
	return next(B8)
}

func B8(w *Wrapper) Outcome {
	authHeader := w.Request.Header.Get("Authorization")
	if w.Resource.IsAuthorized(authHeader, w.Response.Header()) {
		return next(B7)
	}
	return halt(http.StatusUnauthorized)
}

func B7(w *Wrapper) Outcome {
	if w.Resource.Forbidden() {
		return halt(http.StatusForbidden)
	}
	return next(B6)
}

func B6(w *Wrapper) Outcome {
	contentHeaders := http.Header{}
	for name, values := range w.Request.Header {
		if strings.HasPrefix(strings.ToUpper(name), "CONTENT-") {
			contentHeaders[name] = values
		}
	}
	if w.Resource.ValidContentHeaders(contentHeaders) {
		return next(B5)
	}
	return halt(http.StatusNotImplemented)
}

func B5(w *Wrapper) Outcome {
	contentType := w.Request.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if w.Resource.KnownContentType(contentType) {
		return next(B4)
	}
	return halt(http.StatusUnsupportedMediaType)
}

// B4 reads content length off Request.ContentLength rather than the
// Content-Length header directly: net/http parses the header into that
// field for every request it hands to a handler (and httptest-built
// requests populate it the same way), so this is the one source of
// truth regardless of how the request reached the flow.
func B4(w *Wrapper) Outcome {
	contentLength := w.Request.ContentLength
	transferEncoding := len(w.Request.TransferEncoding) > 0 || w.Request.Header.Get("Transfer-Encoding") != ""
	hasContentLengthHeader := w.Request.Header.Get("Content-Length") != "" || contentLength > 0

	switch w.Request.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		if hasContentLengthHeader {
			return halt(http.StatusBadRequest)
		}
		return next(B3)
	}

	if transferEncoding && hasContentLengthHeader {
		return halt(http.StatusBadRequest)
	}

	if !hasContentLengthHeader {
		if transferEncoding {
			return next(B3)
		}
		return halt(http.StatusBadRequest)
	}

	if contentLength < 0 {
		return halt(http.StatusBadRequest)
	}
	if w.Resource.ValidEntityLength(uint64(contentLength)) {
		return next(B3)
	}
	return halt(http.StatusRequestEntityTooLarge)
}

func B3(w *Wrapper) Outcome {
	if w.Request.Method == http.MethodOptions {
		w.Response.Header().Set("Allow", strings.Join(w.Resource.AllowedMethods(), ", "))
		return done(http.StatusOK)
	}
	return next(C3)
}

// --- C/D/E/F: content negotiation ---

func C3(w *Wrapper) Outcome {
	if w.Request.Header.Get("Accept") == "" {
		provided := mediaTypes(w.Resource.ContentTypesProvided())
		if len(provided) == 0 {
			panic("flow: content_types_provided must be non-empty")
		}
		w.Neg.MediaType = provided[0]
		return next(D4)
	}
	return next(C4)
}

func C4(w *Wrapper) Outcome {
	provided := mediaTypes(w.Resource.ContentTypesProvided())
	chosen, err := conneg.ChooseMediaType(w.Request.Header.Get("Accept"), provided)
	if err != nil {
		if err == conneg.ErrParse {
			return halt(http.StatusBadRequest)
		}
		return halt(http.StatusNotAcceptable)
	}
	w.Neg.MediaType = chosen
	return next(D4)
}

func D4(w *Wrapper) Outcome {
	if w.Request.Header.Get("Accept-Language") == "" {
		return next(E5)
	}
	return next(D5)
}

func D5(w *Wrapper) Outcome {
	provided := w.Resource.LanguagesProvided()
	if len(provided) == 0 {
		return next(E5)
	}
	chosen, err := conneg.ChooseLanguage(w.Request.Header.Get("Accept-Language"), provided)
	if err != nil {
		return halt(http.StatusNotAcceptable)
	}
	w.Neg.Language = chosen
	return next(E5)
}

func E5(w *Wrapper) Outcome {
	if w.Request.Header.Get("Accept-Charset") == "" {
		return next(F6)
	}
	return next(E6)
}

func E6(w *Wrapper) Outcome {
	provided := w.Resource.CharsetsProvided()
	if len(provided) == 0 {
		return next(F6)
	}
	chosen, err := conneg.ChooseCharset(w.Request.Header.Get("Accept-Charset"), provided)
	if err != nil {
		return halt(http.StatusNotAcceptable)
	}
	w.Neg.Charset = chosen
	return next(F6)
}

func F6(w *Wrapper) Outcome {
	if w.Request.Header.Get("Accept-Encoding") == "" {
		return next(G7)
	}
	return next(F7)
}

func F7(w *Wrapper) Outcome {
	provided := w.Resource.EncodingsProvided()
	if len(provided) == 0 {
		return next(G7)
	}
	chosen, err := conneg.ChooseEncoding(w.Request.Header.Get("Accept-Encoding"), provided)
	if err != nil {
		return halt(http.StatusNotAcceptable)
	}
	w.Neg.Encoding = chosen
	return next(G7)
}

func mediaTypes(handlers []resource.MediaHandler) []string {
	out := make([]string, len(handlers))
	for i, h := range handlers {
		out[i] = h.Type
	}
	return out
}

func containsMethod(methods []string, method string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}

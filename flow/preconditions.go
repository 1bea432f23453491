package flow

import (
	"net/http"
	"strings"
	"time"

	"github.com/elena-brandt/httpresource/resource"
	"github.com/elena-brandt/httpresource/response"
)

// --- G/H: existence and If-Match ---

func G7(w *Wrapper) Outcome {
	w.Neg.ResourceExisted = w.Resource.ResourceExists()
	if w.Neg.ResourceExisted {
		return next(G8)
	}
	return next(H7)
}

func G8(w *Wrapper) Outcome {
	if w.Request.Header.Get("If-Match") == "" {
		return next(H10)
	}
	return next(G9)
}

func G9(w *Wrapper) Outcome {
	if w.Request.Header.Get("If-Match") == "*" {
		return next(H10)
	}
	return next(G11)
}

func G11(w *Wrapper) Outcome {
	if etagMatchesAny(w.Resource, w.Request.Header.Get("If-Match")) {
		return next(H10)
	}
	return halt(http.StatusPreconditionFailed)
}

// H7 is the missing-resource subgraph: a resource that doesn't exist is
// either a new location (moved permanently/temporarily → redirect), a
// genuine 404 with a detour through "previously existed" for 410 Gone,
// or — for PUT specifically — a creation candidate that proceeds
// straight into the mutation tail, since a resource that has never
// existed cannot have moved.
func H7(w *Wrapper) Outcome {
	if w.Request.Header.Get("If-Match") != "" {
		return halt(http.StatusPreconditionFailed)
	}
	if w.Request.Method == http.MethodPut {
		return next(M16)
	}
	return next(H11)
}

func H11(w *Wrapper) Outcome {
	if loc, ok := w.Resource.MovedPermanently(); ok {
		w.Response.Header().Set("Location", loc)
		return done(http.StatusMovedPermanently)
	}
	return next(H12)
}

func H12(w *Wrapper) Outcome {
	if w.Resource.PreviouslyExisted() {
		return next(I12H)
	}
	return halt(http.StatusNotFound)
}

// I12H is the previously-existed tail reached from H12: check for a
// temporary move (307) before falling through to 410 Gone, matching the
// diagram's I7/K7/L7 redirect family.
func I12H(w *Wrapper) Outcome {
	if loc, ok := w.Resource.MovedTemporarily(); ok {
		w.Response.Header().Set("Location", loc)
		return done(http.StatusTemporaryRedirect)
	}
	return halt(http.StatusGone)
}

// --- H10/I/J/K/L: If-Unmodified-Since and If-None-Match ---

func H10(w *Wrapper) Outcome {
	if w.Request.Header.Get("If-Unmodified-Since") == "" {
		return next(I12)
	}
	return next(H11IUS)
}

func H11IUS(w *Wrapper) Outcome {
	since, ok := parseHTTPDate(w.Request.Header.Get("If-Unmodified-Since"))
	if !ok {
		return next(I12)
	}
	lastMod, has := w.Resource.LastModified()
	if has && lastMod.After(since) {
		return halt(http.StatusPreconditionFailed)
	}
	return next(I12)
}

func I12(w *Wrapper) Outcome {
	if w.Request.Header.Get("If-None-Match") == "" {
		return next(L13)
	}
	return next(I13)
}

func I13(w *Wrapper) Outcome {
	if w.Request.Header.Get("If-None-Match") == "*" {
		return next(J18)
	}
	return next(K13)
}

func K13(w *Wrapper) Outcome {
	if etagMatchesAny(w.Resource, w.Request.Header.Get("If-None-Match")) {
		return next(J18)
	}
	return next(L13)
}

// J18 handles the If-None-Match hit: GET/HEAD get a 304, anything else
// (a conditional PUT/DELETE guarding against lost updates) is a
// precondition failure.
func J18(w *Wrapper) Outcome {
	if w.Request.Method == http.MethodGet || w.Request.Method == http.MethodHead {
		return halt(http.StatusNotModified)
	}
	return halt(http.StatusPreconditionFailed)
}

func L13(w *Wrapper) Outcome {
	if w.Request.Method != http.MethodGet && w.Request.Method != http.MethodHead {
		return next(M16)
	}
	if w.Request.Header.Get("If-Modified-Since") == "" {
		return next(M16)
	}
	return next(L14)
}

func L14(w *Wrapper) Outcome {
	since, ok := parseHTTPDate(w.Request.Header.Get("If-Modified-Since"))
	if !ok {
		return next(M16)
	}
	return next(makeL15(since))
}

func makeL15(since time.Time) Node {
	return func(w *Wrapper) Outcome {
		if since.After(time.Now()) {
			return next(M16)
		}
		return next(makeL17(since))
	}
}

func makeL17(since time.Time) Node {
	return func(w *Wrapper) Outcome {
		lastMod, has := w.Resource.LastModified()
		if has && !lastMod.After(since) {
			return halt(http.StatusNotModified)
		}
		return next(M16)
	}
}

// --- M/N/O/P: mutation tail ---

func M16(w *Wrapper) Outcome {
	if w.Request.Method == http.MethodDelete {
		return next(M20)
	}
	return next(N16)
}

// M20 performs the delete (delete_method) and then checks whether it
// ran to completion synchronously (delete_completed); per the diagram's
// false-edge, an incomplete-but-accepted delete is 202, not an error.
func M20(w *Wrapper) Outcome {
	if !w.Resource.DeleteMethod() {
		return halt(http.StatusInternalServerError)
	}
	if w.Resource.DeleteCompleted() {
		return next(O20)
	}
	return done(http.StatusAccepted)
}

func N16(w *Wrapper) Outcome {
	if w.Request.Method == http.MethodPost {
		return next(N11)
	}
	return next(O16)
}

// N11 implements the POST-create contract spelled out in spec.md
// "N11 (POST create)": post_is_create routes through the matching input
// handler in content_types_accepted and 201s with Location on success;
// otherwise process_post runs directly. A successful non-create post
// that names a BaseURI redirects with 303 See Other (the webmachine
// "processed, here's where to look" idiom); otherwise it falls through
// to O20 to have its result represented like a GET.
func N11(w *Wrapper) Outcome {
	if w.Resource.PostIsCreate() {
		contentType := w.Request.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		handler := acceptedHandler(w.Resource, contentType)
		if handler == nil {
			panic("flow: no handler for accepted content type at N11")
		}
		if err := handler(w.Resource, w.Request, preCommitWriter{w.Response}); err != nil {
			return halt(http.StatusInternalServerError)
		}
		if w.Resource.ProcessPost() {
			w.Response.Header().Set("Location", w.Resource.CreatePath())
			return done(http.StatusCreated)
		}
		return next(O20)
	}

	if w.Resource.ProcessPost() {
		if loc, ok := w.Resource.BaseURI(); ok {
			w.Response.Header().Set("Location", loc)
			return done(http.StatusSeeOther)
		}
		return next(O20)
	}
	return next(O20)
}

// preCommitWriter is the ResponseWriter an InputHandler receives at
// N11/O14, before the head is committed. Its Header method exposes the
// staged headers to a handler that type-asserts for it. Writes are
// discarded: Done always emits an empty body, so any body bytes written
// this early would never reach the wire regardless.
type preCommitWriter struct {
	resp *response.Delayed
}

func (p preCommitWriter) Header() http.Header     { return p.resp.Header() }
func (p preCommitWriter) Write(b []byte) (int, error) { return len(b), nil }
func (p preCommitWriter) Flush()                  {}

func O16(w *Wrapper) Outcome {
	if w.Request.Method == http.MethodPut {
		return next(O14)
	}
	return next(O18)
}

func O14(w *Wrapper) Outcome {
	if w.Resource.IsConflict() {
		return halt(http.StatusConflict)
	}
	contentType := w.Request.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	handler := acceptedHandler(w.Resource, contentType)
	if handler == nil {
		return halt(http.StatusUnsupportedMediaType)
	}
	if err := handler(w.Resource, w.Request, preCommitWriter{w.Response}); err != nil {
		return halt(http.StatusInternalServerError)
	}
	return next(P11)
}

func P11(w *Wrapper) Outcome {
	if w.Neg.ResourceExisted {
		return next(O20)
	}
	w.Response.Header().Set("Location", w.Request.URL.RequestURI())
	return done(http.StatusCreated)
}

func O20(w *Wrapper) Outcome {
	if loc, ok := w.Resource.MovedPermanently(); ok {
		w.Response.Header().Set("Location", loc)
		return done(http.StatusMovedPermanently)
	}
	if w.Request.Method == http.MethodDelete {
		return done(http.StatusNoContent)
	}
	return next(O18)
}

func O18(w *Wrapper) Outcome {
	if w.Resource.MultipleChoices() {
		return halt(http.StatusMultipleChoices)
	}

	for _, mh := range w.Resource.ContentTypesProvided() {
		if mh.Type == w.Neg.MediaType {
			if etag, ok := w.Resource.GenerateETag(); ok {
				w.Response.Header().Set("ETag", etag)
			}
			if lastMod, ok := w.Resource.LastModified(); ok {
				w.Response.Header().Set("Last-Modified", lastMod.UTC().Format(http.TimeFormat))
			}
			w.Response.Header().Set("Content-Type", w.Neg.MediaType)
			return output(mh.Handler)
		}
	}
	panic("flow: no handler for negotiated media type at O18")
}

func etagMatchesAny(res interface {
	GenerateETag() (string, bool)
}, header string) bool {
	etag, ok := res.GenerateETag()
	if !ok {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		if strings.Trim(strings.TrimSpace(candidate), `"`) == strings.Trim(etag, `"`) {
			return true
		}
	}
	return false
}

func parseHTTPDate(value string) (time.Time, bool) {
	t, err := http.ParseTime(value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func acceptedHandler(res resource.Resource, contentType string) resource.InputHandler {
	mediaType := contentType
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(contentType[:i])
	}
	for _, ch := range res.ContentTypesAccepted() {
		if strings.EqualFold(ch.Type, mediaType) {
			return ch.Handler
		}
	}
	return nil
}

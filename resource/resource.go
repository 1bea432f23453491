// Package resource defines the capability contract that every endpoint
// implements, and a Default embeddable base that gives a resource
// overriding nothing the behaviour of a well-formed read-only endpoint
// returning 200 on GET/HEAD.
//
// Go interfaces don't support default method bodies, so the "trait with
// defaults" the decision flow wants is modeled as embedding: a concrete
// resource embeds Default and overrides only the methods whose behaviour
// differs from the default.
package resource

import (
	"net/http"
	"time"
)

// OutputHandler produces a representation of the resource onto an
// already-started response. It is invoked after content negotiation has
// picked the media type it's registered under.
type OutputHandler func(res Resource, w ResponseWriter) error

// InputHandler consumes the request body (and, for creating requests,
// the representation carried in it) and may push chunks describing the
// outcome onto an already-started response.
type InputHandler func(res Resource, r *http.Request, w ResponseWriter) error

// ResponseWriter is the minimal surface a handler needs against a
// started response: write body bytes and flush them to the client.
// Any response.Sink satisfies it; kept as a separate interface here so
// resource implementations don't need to import the response package.
type ResponseWriter interface {
	Write([]byte) (int, error)
	Flush()
}

// MediaHandler pairs a media type this resource can emit with the
// handler that emits it.
type MediaHandler struct {
	Type    string
	Handler OutputHandler
}

// ContentHandler pairs a media type this resource can consume with the
// handler that consumes it.
type ContentHandler struct {
	Type    string
	Handler InputHandler
}

// Resource is the full capability set a decision-flow endpoint exposes.
// Every method has a default on Default; override only what differs.
type Resource interface {
	// --- Availability (nodes B13-B9) ---
	ServiceAvailable() bool
	KnownMethods() []string
	URITooLong(path string) bool
	AllowedMethods() []string
	MalformedRequest() bool
	ValidateContentChecksum() (valid bool, present bool)

	// --- Authorization (B8-B7) ---
	IsAuthorized(authorizationHeader string, responseHeader http.Header) bool
	Forbidden() bool

	// --- Content headers (B6-B4) ---
	ValidContentHeaders(headers http.Header) bool
	KnownContentType(contentType string) bool
	ValidEntityLength(length uint64) bool

	// --- Negotiation (C3-F7) ---
	ContentTypesProvided() []MediaHandler
	ContentTypesAccepted() []ContentHandler
	LanguagesProvided() []string
	CharsetsProvided() []string
	EncodingsProvided() []string

	// --- Existence & preconditions (G7-L15) ---
	ResourceExists() bool
	GenerateETag() (string, bool)
	LastModified() (time.Time, bool)
	MovedPermanently() (string, bool)
	MovedTemporarily() (string, bool)
	PreviouslyExisted() bool
	IsConflict() bool
	MultipleChoices() bool

	// --- Mutation (M16-P11) ---
	DeleteMethod() bool
	DeleteCompleted() bool
	PostIsCreate() bool
	CreatePath() string
	ProcessPost() bool
	BaseURI() (string, bool)
}

// Default implements every Resource method with the behaviour spec'd
// for a resource that overrides nothing: service always available, only
// GET/HEAD allowed, no auth, a single text/plain representation of an
// empty body, no preconditions, nothing accepted for mutation.
type Default struct{}

func (Default) ServiceAvailable() bool { return true }

func (Default) KnownMethods() []string {
	return []string{
		http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodDelete, http.MethodTrace, http.MethodConnect, http.MethodOptions,
	}
}

func (Default) URITooLong(string) bool { return false }

func (Default) AllowedMethods() []string {
	return []string{http.MethodGet, http.MethodHead}
}

func (Default) MalformedRequest() bool { return false }

func (Default) ValidateContentChecksum() (valid bool, present bool) { return false, false }

func (Default) IsAuthorized(string, http.Header) bool { return true }

func (Default) Forbidden() bool { return false }

func (Default) ValidContentHeaders(http.Header) bool { return true }

func (Default) KnownContentType(string) bool { return true }

func (Default) ValidEntityLength(uint64) bool { return true }

func (d Default) ContentTypesProvided() []MediaHandler {
	return []MediaHandler{
		{Type: "text/plain", Handler: func(Resource, ResponseWriter) error { return nil }},
	}
}

func (Default) ContentTypesAccepted() []ContentHandler { return nil }

func (Default) LanguagesProvided() []string { return nil }

func (Default) CharsetsProvided() []string { return nil }

func (Default) EncodingsProvided() []string { return nil }

func (Default) ResourceExists() bool { return true }

func (Default) GenerateETag() (string, bool) { return "", false }

func (Default) LastModified() (time.Time, bool) { return time.Time{}, false }

func (Default) MovedPermanently() (string, bool) { return "", false }

func (Default) MovedTemporarily() (string, bool) { return "", false }

func (Default) PreviouslyExisted() bool { return false }

func (Default) IsConflict() bool { return false }

func (Default) MultipleChoices() bool { return false }

func (Default) DeleteMethod() bool { return false }

func (Default) DeleteCompleted() bool { return true }

func (Default) PostIsCreate() bool { return false }

func (Default) CreatePath() string { return "" }

func (Default) ProcessPost() bool { return false }

func (Default) BaseURI() (string, bool) { return "", false }

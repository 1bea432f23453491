package flow_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elena-brandt/httpresource/flow"
	"github.com/elena-brandt/httpresource/resource"
)

// htmlResource provides a single text/html representation, matching
// spec.md §8's "default resource + GET with no headers -> 200 with the
// first provided media type" law.
type htmlResource struct {
	resource.Default
}

func (htmlResource) ContentTypesProvided() []resource.MediaHandler {
	return []resource.MediaHandler{
		{Type: "text/html", Handler: func(resource.Resource, resource.ResponseWriter) error { return nil }},
	}
}

func drive(t *testing.T, res resource.Resource, r *http.Request) (status int, header http.Header) {
	t.Helper()

	w := flow.NewWrapper(res, r)
	current := flow.Start()

	for current.Kind == flow.KindNext {
		current = current.Next(w)
	}

	if current.Kind == flow.KindHalt || current.Kind == flow.KindDone {
		w.Response.SetStatus(current.Status)
	}
	// Read the staged head before Start: Delayed.Header panics once the
	// response has started.
	status, header = w.Response.Status(), w.Response.Header()

	switch current.Kind {
	case flow.KindOutput:
		w.Response.Start(noopSink{})
		require.NoError(t, current.Output(res, w.Response.Sink()))
	case flow.KindInput:
		w.Response.Start(noopSink{})
		require.NoError(t, current.Input(res, r, w.Response.Sink()))
	}

	return status, header
}

type noopSink struct{}

func (noopSink) Write(b []byte) (int, error) { return len(b), nil }
func (noopSink) Flush()                      {}

func TestDefaultResourceGetNoHeaders(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	status, _ := drive(t, htmlResource{}, r)

	assert.Equal(t, http.StatusOK, status)
}

func TestNotAcceptableWhenMediaTypeUnavailable(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "application/json")

	status, _ := drive(t, htmlResource{}, r)

	assert.Equal(t, http.StatusNotAcceptable, status)
}

func TestMethodNotAllowedSetsAllowHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	r.Header.Set("Content-Type", "application/json")

	status, header := drive(t, htmlResource{}, r)

	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "GET, HEAD", header.Get("Allow"))
}

func TestHeadWithNoBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodHead, "/", nil)

	status, _ := drive(t, htmlResource{}, r)

	assert.Equal(t, http.StatusOK, status)
}

func TestAcceptWithQValuesPicksHighestQExactMatch(t *testing.T) {
	multi := multiTypeResource{}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "text/html,application/xml;q=0.9,*/*;q=0.8")

	status, header := drive(t, multi, r)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "text/html", header.Get("Content-Type"))
}

type multiTypeResource struct {
	resource.Default
}

func (multiTypeResource) ContentTypesProvided() []resource.MediaHandler {
	return []resource.MediaHandler{
		{Type: "text/html", Handler: func(resource.Resource, resource.ResponseWriter) error { return nil }},
		{Type: "application/xml", Handler: func(resource.Resource, resource.ResponseWriter) error { return nil }},
	}
}

type serviceUnavailableResource struct {
	resource.Default
}

func (serviceUnavailableResource) ServiceAvailable() bool { return false }

func TestServiceUnavailable(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	status, _ := drive(t, serviceUnavailableResource{}, r)

	assert.Equal(t, http.StatusServiceUnavailable, status)
}

type forbiddenResource struct {
	resource.Default
}

func (forbiddenResource) Forbidden() bool { return true }

func TestForbidden(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	status, _ := drive(t, forbiddenResource{}, r)

	assert.Equal(t, http.StatusForbidden, status)
}

// postCreateResource exercises the N11 POST-create contract.
type postCreateResource struct {
	resource.Default
	created bool
}

func (postCreateResource) AllowedMethods() []string { return []string{http.MethodGet, http.MethodPost} }
func (postCreateResource) PostIsCreate() bool        { return true }
func (postCreateResource) CreatePath() string         { return "/widgets/42" }
func (postCreateResource) ProcessPost() bool          { return true }
func (postCreateResource) ContentTypesAccepted() []resource.ContentHandler {
	return []resource.ContentHandler{
		{Type: "application/json", Handler: func(resource.Resource, *http.Request, resource.ResponseWriter) error { return nil }},
	}
}

func TestPostCreateReturns201WithLocation(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(`{"name":"gizmo"}`))
	r.Header.Set("Content-Type", "application/json")

	status, header := drive(t, postCreateResource{}, r)

	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "/widgets/42", header.Get("Location"))
}

type optionsResource struct {
	resource.Default
}

func (optionsResource) AllowedMethods() []string {
	return []string{http.MethodGet, http.MethodHead, http.MethodOptions}
}

func TestOptionsHalts200(t *testing.T) {
	r := httptest.NewRequest(http.MethodOptions, "/", nil)

	status, _ := drive(t, optionsResource{}, r)

	assert.Equal(t, http.StatusOK, status)
}

func TestIdempotentNegotiation(t *testing.T) {
	r1 := httptest.NewRequest(http.MethodGet, "/", nil)
	r1.Header.Set("Accept", "text/html,application/xml;q=0.9")
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.Header.Set("Accept", "text/html,application/xml;q=0.9")

	res := multiTypeResource{}

	_, h1 := drive(t, res, r1)
	_, h2 := drive(t, res, r2)

	assert.Equal(t, h1.Get("Content-Type"), h2.Get("Content-Type"))
}

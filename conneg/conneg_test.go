package conneg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseMediaType_AcceptTypeParsing(t *testing.T) {
	header := "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	got, err := ChooseMediaType(header, []string{"text/html"})
	require.NoError(t, err)
	assert.Equal(t, "text/html", got)

	got, err = ChooseMediaType(header, []string{"application/xml"})
	require.NoError(t, err)
	assert.Equal(t, "application/xml", got)

	got, err = ChooseMediaType(header, []string{"text/html", "application/xml"})
	require.NoError(t, err)
	assert.Equal(t, "text/html", got)

	got, err = ChooseMediaType(header, []string{"text/plain", "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "text/plain", got)
}

func TestChooseMediaType_AcceptHeaderPriorityRules(t *testing.T) {
	header := "text/html,text/*,*/*"

	got, err := ChooseMediaType(header, []string{"text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "text/plain", got)

	got, err = ChooseMediaType(header, []string{"text/plain", "application/json"})
	require.NoError(t, err)
	assert.Equal(t, "text/plain", got)
}

func TestChooseMediaType_QZeroExcludes(t *testing.T) {
	_, err := ChooseMediaType("text/html;q=0", []string{"text/html"})
	assert.ErrorIs(t, err, ErrNotProvided)
}

func TestChooseMediaType_EmptyHeaderPicksFirstProvided(t *testing.T) {
	got, err := ChooseMediaType("", []string{"application/json", "text/html"})
	require.NoError(t, err)
	assert.Equal(t, "application/json", got)
}

func TestChooseMediaType_NoOverlap(t *testing.T) {
	_, err := ChooseMediaType("application/xml", []string{"text/html"})
	assert.ErrorIs(t, err, ErrNotProvided)
}

func TestChooseCharset_WildcardAndExact(t *testing.T) {
	got, err := ChooseCharset("utf-8, iso-8859-1;q=0.5", []string{"iso-8859-1", "utf-8"})
	require.NoError(t, err)
	assert.Equal(t, "utf-8", got)

	got, err = ChooseCharset("*;q=0.1,ascii", []string{"utf-8"})
	require.NoError(t, err)
	assert.Equal(t, "utf-8", got)
}

func TestChooseEncoding_QValuesBreakTies(t *testing.T) {
	got, err := ChooseEncoding("gzip;q=0.5, br;q=0.8", []string{"gzip", "br"})
	require.NoError(t, err)
	assert.Equal(t, "br", got)
}

func TestChooseLanguage_PrefixMatch(t *testing.T) {
	got, err := ChooseLanguage("en-US,en;q=0.8", []string{"en-GB"})
	require.NoError(t, err)
	assert.Equal(t, "en-GB", got)

	got, err = ChooseLanguage("fr", []string{"en-US", "fr-FR"})
	require.NoError(t, err)
	assert.Equal(t, "fr-FR", got)
}

func TestChooseLanguage_ExactBeatsPrefixAtSameQuality(t *testing.T) {
	got, err := ChooseLanguage("en", []string{"en-US", "en"})
	require.NoError(t, err)
	assert.Equal(t, "en", got)
}

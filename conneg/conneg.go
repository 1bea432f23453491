// Package conneg implements the four content-negotiation selectors the
// decision flow calls on: media type, charset, encoding and language.
// All four share one weighted-matcher core; they differ only in how a
// requested token's specificity against a provided one is scored.
//
// This is hand-written against the standard library rather than
// pulled from a corpus negotiation library — see DESIGN.md for why.
package conneg

import (
	"errors"
	"strconv"
	"strings"
)

// ErrParse means a header value couldn't be parsed as a weighted list
// of tokens.
var ErrParse = errors.New("conneg: parse error")

// ErrNotProvided means none of the provided values were acceptable
// under the header (everything was excluded by q=0 or non-overlap).
var ErrNotProvided = errors.New("conneg: not provided")

// weighted is one parsed entry of a header's comma-separated list.
type weighted struct {
	token   string
	quality float64
}

// parseWeighted parses a header of the form `tok1;q=0.8, tok2, tok3;q=0`
// into its entries, in header order. An absent q defaults to 1.0.
func parseWeighted(header string) ([]weighted, error) {
	if strings.TrimSpace(header) == "" {
		return nil, nil
	}

	parts := strings.Split(header, ",")
	out := make([]weighted, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, ErrParse
		}

		token := part
		quality := 1.0

		if i := strings.IndexByte(part, ';'); i >= 0 {
			token = strings.TrimSpace(part[:i])
			params := part[i+1:]

			qStr, ok := findQ(params)
			if ok {
				q, err := strconv.ParseFloat(strings.TrimSpace(qStr), 64)
				if err != nil {
					return nil, ErrParse
				}
				quality = q
			}
		}

		if token == "" {
			return nil, ErrParse
		}

		out = append(out, weighted{token: token, quality: quality})
	}

	return out, nil
}

// findQ locates a `q=...` parameter among semicolon-separated params.
func findQ(params string) (string, bool) {
	for _, p := range strings.Split(params, ";") {
		p = strings.TrimSpace(p)
		if len(p) >= 2 && (p[0] == 'q' || p[0] == 'Q') && p[1] == '=' {
			return p[2:], true
		}
	}
	return "", false
}

// specificityFunc scores how specifically a requested token matches a
// provided one. It returns (specificity, matched) — lower specificity
// wins ties; matched is false when the two don't overlap at all.
type specificityFunc func(requested, provided string) (specificity int, matched bool)

// choose runs the shared tie-break algorithm: among header entries that
// overlap one of the provided values, pick highest quality, then lowest
// specificity, then first occurrence in header order. A q=0 entry never
// wins and never suppresses a later, non-zero entry.
func choose(header string, provided []string, score specificityFunc) (string, error) {
	entries, err := parseWeighted(header)
	if err != nil {
		return "", err
	}

	if entries == nil {
		if len(provided) == 0 {
			return "", ErrNotProvided
		}
		return provided[0], nil
	}

	var (
		found        string
		foundQuality float64 = -1
		foundSpec    int
		has          bool
	)

	for _, e := range entries {
		if e.quality <= 0 {
			continue
		}

		var bestProvided string
		var bestSpec int
		matchedAny := false

		for _, p := range provided {
			spec, ok := score(e.token, p)
			if !ok {
				continue
			}
			if !matchedAny || spec < bestSpec {
				matchedAny = true
				bestSpec = spec
				bestProvided = p
			}
		}

		if !matchedAny {
			continue
		}

		switch {
		case !has:
			found, foundQuality, foundSpec, has = bestProvided, e.quality, bestSpec, true
		case e.quality > foundQuality:
			found, foundQuality, foundSpec = bestProvided, e.quality, bestSpec
		case e.quality == foundQuality && bestSpec < foundSpec:
			found, foundSpec = bestProvided, bestSpec
		}
	}

	if !has {
		return "", ErrNotProvided
	}
	return found, nil
}

// ChooseMediaType negotiates a media type from an Accept header value
// against the media types a resource provides, in the order provided.
// Specificity: 0 exact type/subtype match, 1 type matches and subtype
// wildcard (`type/*`), 2 full wildcard (`*/*`).
func ChooseMediaType(header string, provided []string) (string, error) {
	return choose(header, provided, mediaTypeSpecificity)
}

func mediaTypeSpecificity(requested, provided string) (int, bool) {
	reqType, reqSub, ok := splitMediaType(requested)
	if !ok {
		return 0, false
	}
	provType, provSub, ok := splitMediaType(provided)
	if !ok {
		return 0, false
	}

	if reqType == "*" && reqSub == "*" {
		return 2, true
	}
	if !strings.EqualFold(reqType, provType) {
		return 0, false
	}
	if reqSub == "*" {
		return 1, true
	}
	if strings.EqualFold(reqSub, provSub) {
		return 0, true
	}
	return 0, false
}

func splitMediaType(s string) (typ, sub string, ok bool) {
	i := strings.IndexByte(s, '/')
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), true
}

// ChooseCharset negotiates a charset from an Accept-Charset header
// value. Specificity: 0 exact token match (case-insensitive), 1
// wildcard `*`.
func ChooseCharset(header string, provided []string) (string, error) {
	return choose(header, provided, flatTokenSpecificity)
}

// ChooseEncoding negotiates a content-coding from an Accept-Encoding
// header value, using the same flat-token + wildcard scheme as charset.
func ChooseEncoding(header string, provided []string) (string, error) {
	return choose(header, provided, flatTokenSpecificity)
}

func flatTokenSpecificity(requested, provided string) (int, bool) {
	if requested == "*" {
		return 1, true
	}
	if strings.EqualFold(requested, provided) {
		return 0, true
	}
	return 0, false
}

// ChooseLanguage negotiates a language from an Accept-Language header
// value using RFC 7231 §5.3.5 basic filtering: an exact tag match, or a
// range that is a case-insensitive prefix of the tag followed by `-`,
// or the wildcard `*`.
func ChooseLanguage(header string, provided []string) (string, error) {
	return choose(header, provided, languageSpecificity)
}

func languageSpecificity(requested, provided string) (int, bool) {
	if strings.EqualFold(requested, provided) {
		return 0, true
	}
	if requested == "*" {
		return 2, true
	}
	if len(provided) > len(requested) &&
		strings.EqualFold(provided[:len(requested)], requested) &&
		provided[len(requested)] == '-' {
		return 1, true
	}
	return 0, false
}

package edgecontext

import (
	"net/http"
)

// HeaderName is the HTTP header carrying the base64 edge request header.
const HeaderName = "X-Edge-Request"

// HeaderExtractor returns the base64 edge header of a request, or "" when
// the request carries none.
type HeaderExtractor func(r *http.Request) string

// DefaultHeaderExtractor reads the X-Edge-Request header.
func DefaultHeaderExtractor(r *http.Request) string {
	return r.Header.Get(HeaderName)
}

// RequestHeaderExtractor reads the named header.
func RequestHeaderExtractor(name string) HeaderExtractor {
	return func(r *http.Request) string {
		return r.Header.Get(name)
	}
}

// MultiHeaderExtractor returns the first non-empty value produced by
// extractors, which is useful while renaming a header.
func MultiHeaderExtractor(extractors ...HeaderExtractor) HeaderExtractor {
	return func(r *http.Request) string {
		for _, ex := range extractors {
			if value := ex(r); value != "" {
				return value
			}
		}
		return ""
	}
}

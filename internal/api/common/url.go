package common

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// maxIDLength bounds identifiers taken from the URL path
const maxIDLength = 253

// GetAndValidateURLParam extracts and decodes a chi URL parameter holding an identifier.
// The value must be non-empty, free of whitespace and path separators, and at most 253 bytes.
func GetAndValidateURLParam(r *http.Request, paramName string) (string, error) {
	decoded, err := url.PathUnescape(chi.URLParam(r, paramName))
	if err != nil {
		return "", fmt.Errorf("invalid URL encoding in %s", paramName)
	}

	switch {
	case strings.TrimSpace(decoded) == "":
		return "", fmt.Errorf("%s cannot be empty", paramName)
	case strings.ContainsAny(decoded, " \t\n\r"):
		return "", fmt.Errorf("%s cannot contain whitespace", paramName)
	case strings.ContainsAny(decoded, `/\`):
		return "", fmt.Errorf("%s cannot contain path separators", paramName)
	case len(decoded) > maxIDLength:
		return "", fmt.Errorf("%s is longer than %d characters", paramName, maxIDLength)
	}
	return decoded, nil
}

package catalog

import (
	"regexp"
	"strings"
)

// DefaultPlaceholder is the asset shown for exercises without an image.
const DefaultPlaceholder = "assets/img/main/placeholder.png"

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// ThumbnailResolver turns stored image paths into renderable URLs.
type ThumbnailResolver struct {
	baseURL     string
	placeholder string
}

// NewThumbnailResolver creates a resolver for server-relative paths under baseURL.
// An empty placeholder selects DefaultPlaceholder.
func NewThumbnailResolver(baseURL, placeholder string) ThumbnailResolver {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return ThumbnailResolver{
		baseURL:     strings.TrimRight(baseURL, "/"),
		placeholder: placeholder,
	}
}

// Resolve returns the placeholder for an empty path, absolute URLs unchanged,
// and anything else prefixed with the backend base URL.
func (r ThumbnailResolver) Resolve(path string) string {
	if path == "" {
		return r.placeholder
	}
	if absoluteURL.MatchString(path) {
		return path
	}
	return r.baseURL + "/" + strings.TrimLeft(path, "/")
}

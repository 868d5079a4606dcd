package utils

import "strings"

const (
	imageBaseURL     = "https://image.tmdb.org/t/p"
	placeholderImage = "https://via.placeholder.com/500x750?text=No+Image"
)

// ImageURL builds a full poster/backdrop URL for a catalog image path.
// An empty path yields a placeholder, and paths that are already absolute
// URLs pass through unchanged.
func ImageURL(path, size string) string {
	if path == "" {
		return placeholderImage
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	if size == "" {
		size = "w500"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return imageBaseURL + "/" + size + path
}

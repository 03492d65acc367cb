package domain

import (
	"mime"
	"strings"
)

// AcceptedImageTypes are the avatar MIME types the dashboard accepts.
// "image/jpg" is not registered but browsers and some tools still send it.
var AcceptedImageTypes = []string{"image/png", "image/jpeg", "image/jpg"}

// MediaType strips parameters from a Content-Type value and lower-cases it.
// Unparseable values are returned trimmed and lower-cased.
func MediaType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// CanonicalImageType maps aliases onto their registered type.
func CanonicalImageType(contentType string) string {
	mt := MediaType(contentType)
	if mt == "image/jpg" || mt == "image/pjpeg" {
		return "image/jpeg"
	}
	return mt
}

// IsAcceptedImageType reports whether contentType is one of AcceptedImageTypes.
func IsAcceptedImageType(contentType string) bool {
	mt := MediaType(contentType)
	for _, t := range AcceptedImageTypes {
		if mt == t {
			return true
		}
	}
	return false
}

package product

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Placeholder is served whenever image data is missing or cannot be decoded.
const Placeholder ImageRef = "/images/noImage/waiting.png"

// ImageRef is a URL or site-relative path of an image.
type ImageRef string

// DecodeImages accepts the shapes the API uses for image lists: a JSON array
// of strings, a string holding a JSON-encoded array or string, or a bare URL.
// Undecodable data yields a single Placeholder; null or empty yields no images.
func DecodeImages(raw json.RawMessage) []ImageRef {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []ImageRef{}
	}
	switch raw[0] {
	case '[':
		return decodeArray(raw)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return []ImageRef{Placeholder}
		}
		return ParseImageList(s)
	default:
		return []ImageRef{Placeholder}
	}
}

// ParseImageList decodes an image list that was stored as a string.
func ParseImageList(s string) []ImageRef {
	s = strings.TrimSpace(s)
	if s == "" {
		return []ImageRef{}
	}
	switch s[0] {
	case '[':
		return decodeArray([]byte(s))
	case '"':
		var inner string
		if err := json.Unmarshal([]byte(s), &inner); err != nil || strings.TrimSpace(inner) == "" {
			return []ImageRef{Placeholder}
		}
		return []ImageRef{ImageRef(inner)}
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return []ImageRef{ImageRef(s)}
	}
	return []ImageRef{Placeholder}
}

func decodeArray(raw []byte) []ImageRef {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return []ImageRef{Placeholder}
	}
	out := make([]ImageRef, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, ImageRef(s))
		}
	}
	return out
}

// Cover returns the first image or the placeholder.
func Cover(images []ImageRef) ImageRef {
	if len(images) == 0 {
		return Placeholder
	}
	return images[0]
}

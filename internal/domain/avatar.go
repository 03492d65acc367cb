package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"strings"
)

const dataURIPrefix = "data:"

// Avatar is either a URL or inline image bytes. On the wire it is always a
// JSON string: a "data:" URI for inline bytes, anything else is a URL.
type Avatar struct {
	URL         string
	ContentType string
	Data        []byte
}

// AvatarFromURL wraps a URL reference.
func AvatarFromURL(url string) *Avatar {
	return &Avatar{URL: url}
}

// AvatarFromBytes wraps inline image content.
func AvatarFromBytes(contentType string, data []byte) *Avatar {
	return &Avatar{ContentType: contentType, Data: bytes.Clone(data)}
}

// IsBinary reports whether the avatar carries inline content instead of a URL.
func (a *Avatar) IsBinary() bool {
	return a != nil && a.URL == "" && len(a.Data) > 0
}

// Src returns a value usable as an <img src>: the URL, or a base64 data URI.
func (a *Avatar) Src() string {
	switch {
	case a == nil:
		return ""
	case a.IsBinary():
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		return dataURIPrefix + ct + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
	default:
		return a.URL
	}
}

// Clone returns a deep copy.
func (a *Avatar) Clone() *Avatar {
	if a == nil {
		return nil
	}
	c := *a
	c.Data = bytes.Clone(a.Data)
	return &c
}

// MarshalJSON implements json.Marshaler.
func (a Avatar) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Src())
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Avatar) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAvatar, err)
	}
	parsed, err := ParseAvatar(s)
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}

// ParseAvatar turns the wire form of an avatar back into an Avatar.
func ParseAvatar(s string) (*Avatar, error) {
	if !strings.HasPrefix(s, dataURIPrefix) {
		return AvatarFromURL(s), nil
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, dataURIPrefix), ",")
	if !ok {
		return nil, fmt.Errorf("%w: data URI without payload", ErrInvalidAvatar)
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, fmt.Errorf("%w: only base64 data URIs are supported", ErrInvalidAvatar)
	}
	if mediaType != "" {
		if _, _, err := mime.ParseMediaType(mediaType); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAvatar, err)
		}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAvatar, err)
	}
	return AvatarFromBytes(mediaType, data), nil
}

// Package pixels turns an image reference into a decoded grid of pixels.
//
// A reference is either a location (an http(s) URL, a file:// URL, a local
// path or a data: URI) or an in-memory binary payload. Every failure on the
// way from reference to pixels is reported as an errdefs.DecodeError.
package pixels

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// Kind identifies how a Source is resolved.
type Kind int

const (
	// KindFile is a local filesystem path or file:// URL.
	KindFile Kind = iota
	// KindURL is an http:// or https:// URL.
	KindURL
	// KindDataURI is an inline data: URI.
	KindDataURI
	// KindPayload is raw image bytes supplied by the caller.
	KindPayload
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindDataURI:
		return "data-uri"
	case KindPayload:
		return "payload"
	default:
		return "file"
	}
}

// Source is a reference to image data. Payload wins over Location when both
// are set.
type Source struct {
	Location string
	Payload  []byte
}

// FromLocation returns a Source that resolves loc.
func FromLocation(loc string) Source {
	return Source{Location: loc}
}

// FromPayload returns a Source wrapping raw image bytes.
func FromPayload(data []byte) Source {
	return Source{Payload: data}
}

// Kind reports how the source will be resolved.
func (s Source) Kind() Kind {
	if len(s.Payload) > 0 {
		return KindPayload
	}

	loc := strings.ToLower(strings.TrimSpace(s.Location))
	switch {
	case strings.HasPrefix(loc, "data:"):
		return KindDataURI
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		return KindURL
	default:
		return KindFile
	}
}

// String returns a short label for logs and errors. Inline data is not echoed.
func (s Source) String() string {
	switch s.Kind() {
	case KindPayload:
		return fmt.Sprintf("<payload %d bytes>", len(s.Payload))
	case KindDataURI:
		meta, _, _ := strings.Cut(strings.TrimSpace(s.Location), ",")
		return meta + ",..."
	default:
		return s.Location
	}
}

// filePath resolves a file:// URL or plain path to a filesystem path.
func filePath(loc string) (string, error) {
	loc = strings.TrimSpace(loc)
	if !strings.HasPrefix(strings.ToLower(loc), "file://") {
		return loc, nil
	}

	u, err := url.Parse(loc)
	if err != nil {
		return "", fmt.Errorf("invalid file URL: %w", err)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("file URL host %q is not local", u.Host)
	}
	return u.Path, nil
}

// decodeDataURI returns the body of a data: URI. Base64 bodies may be padded
// or unpadded.
func decodeDataURI(uri string) ([]byte, error) {
	uri = strings.TrimSpace(uri)
	meta, body, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI: missing comma")
	}

	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		text, err := url.PathUnescape(body)
		if err != nil {
			return nil, fmt.Errorf("malformed data URI: %w", err)
		}
		return []byte(text), nil
	}

	body = strings.TrimRight(body, "=")
	data, err := base64.RawStdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("malformed base64 in data URI: %w", err)
	}
	return data, nil
}

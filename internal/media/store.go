// Package media stores uploaded images on a media host and returns their public URL.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUpstream wraps failures of the media host.
var ErrUpstream = errors.New("media upstream failed")

// ErrInvalidDataURL is returned when a captured image is not a base64 image data URL.
var ErrInvalidDataURL = errors.New("invalid image data url")

// Store persists an object and returns the URL it is served from.
type Store interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// DecodeDataURL splits a "data:image/...;base64,..." URL into its content type and bytes.
func DecodeDataURL(dataURL string) (contentType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	contentType, ok = strings.CutSuffix(meta, ";base64")
	if !ok || !strings.HasPrefix(contentType, "image/") {
		return "", nil, ErrInvalidDataURL
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return "", nil, ErrInvalidDataURL
	}
	return contentType, data, nil
}

// PutBytes is a convenience wrapper around Store.Put for in-memory payloads.
func PutBytes(ctx context.Context, s Store, name, contentType string, data []byte) (string, error) {
	return s.Put(ctx, name, contentType, bytes.NewReader(data))
}

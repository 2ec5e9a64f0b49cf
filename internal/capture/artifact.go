// Package capture turns raw device output (camera frames, uploaded files)
// into the image artifacts the verification API accepts: a data-URI encoded
// payload plus a preview reference for display.
package capture

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// MaxArtifactSize caps accepted image payloads at 10 MB
const MaxArtifactSize = 10 << 20

// CaptureMethod records how an artifact was produced
type CaptureMethod string

const (
	MethodCamera CaptureMethod = "camera"
	MethodUpload CaptureMethod = "upload"
)

var (
	// ErrNotAnImage is returned when the payload does not sniff as an image
	ErrNotAnImage = errors.New("artifact is not an image")
	// ErrTooLarge is returned when the payload exceeds MaxArtifactSize
	ErrTooLarge = errors.New("artifact exceeds maximum size")
	// ErrEmpty is returned for zero-length payloads
	ErrEmpty = errors.New("artifact is empty")
)

// Artifact is a single captured image: the encoded payload sent to the
// backend and the preview shown to the user are the same data URI.
type Artifact struct {
	ID     string
	MIME   string
	Method CaptureMethod
	data   []byte
}

// FromBytes builds an artifact from a raw image payload
func FromBytes(data []byte, method CaptureMethod) (*Artifact, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > MaxArtifactSize {
		return nil, ErrTooLarge
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, ErrNotAnImage
	}

	return &Artifact{
		ID:     uuid.New().String(),
		MIME:   mimeType,
		Method: method,
		data:   data,
	}, nil
}

// FromReader builds an artifact by reading r to completion
func FromReader(r io.Reader, method CaptureMethod) (*Artifact, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxArtifactSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return FromBytes(data, method)
}

// FromDataURI rebuilds an artifact from a stored data URI, used when
// regenerating previews for steps rehydrated from a resumed session
func FromDataURI(uri string) (*Artifact, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, errors.New("not a data URI")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("malformed data URI")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("data URI is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI: %w", err)
	}

	return FromBytes(data, MethodUpload)
}

// DataURI encodes the artifact for transmission and preview display
func (a *Artifact) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", a.MIME, base64.StdEncoding.EncodeToString(a.data))
}

// Size returns the raw payload size in bytes
func (a *Artifact) Size() int {
	return len(a.data)
}

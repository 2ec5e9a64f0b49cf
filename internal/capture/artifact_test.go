package capture

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes is a minimal payload carrying the PNG magic number
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 64)...)

func TestFromBytesSniffsImageType(t *testing.T) {
	artifact, err := FromBytes(pngBytes, MethodCamera)
	require.NoError(t, err)

	assert.Equal(t, "image/png", artifact.MIME)
	assert.Equal(t, MethodCamera, artifact.Method)
	assert.NotEmpty(t, artifact.ID)
	assert.Equal(t, len(pngBytes), artifact.Size())
}

func TestFromBytesRejectsNonImage(t *testing.T) {
	_, err := FromBytes([]byte("just some text, definitely not pixels"), MethodUpload)
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestFromBytesRejectsEmpty(t *testing.T) {
	_, err := FromBytes(nil, MethodUpload)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestFromBytesRejectsOversized(t *testing.T) {
	big := make([]byte, MaxArtifactSize+1)
	copy(big, pngBytes)

	_, err := FromBytes(big, MethodUpload)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFromReader(t *testing.T) {
	artifact, err := FromReader(bytes.NewReader(pngBytes), MethodUpload)
	require.NoError(t, err)

	assert.Equal(t, "image/png", artifact.MIME)
	assert.Equal(t, MethodUpload, artifact.Method)
}

func TestDataURIRoundTrip(t *testing.T) {
	original, err := FromBytes(pngBytes, MethodCamera)
	require.NoError(t, err)

	uri := original.DataURI()
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	restored, err := FromDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, original.MIME, restored.MIME)
	assert.Equal(t, original.Size(), restored.Size())
	assert.Equal(t, uri, restored.DataURI())
}

func TestFromDataURIMalformed(t *testing.T) {
	for _, uri := range []string{
		"not a data uri",
		"data:image/png,missing-encoding-marker",
		"data:image/png;base64,%%%not-base64%%%",
	} {
		_, err := FromDataURI(uri)
		assert.Error(t, err, "uri %q", uri)
	}
}

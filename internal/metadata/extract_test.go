package metadata

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediavault/backend/internal/models"
)

func TestExtractImageDimensions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 12, 7))))

	meta := Extract("tiny.png", "image/png", &buf)
	assert.Equal(t, "image", meta[models.MediaType])
	assert.Equal(t, "12x7", meta[models.MediaDimensions])
}

func TestExtractUndecodableImageStillTagsType(t *testing.T) {
	meta := Extract("broken.jpg", "image/jpeg", bytes.NewReader([]byte("not an image")))
	assert.Equal(t, "image", meta[models.MediaType])
	assert.NotContains(t, meta, models.MediaDimensions)

	meta = Extract("no-bytes.jpg", "image/jpeg", nil)
	assert.Equal(t, "image", meta[models.MediaType])
}

func TestExtractAudioAndVideoFormat(t *testing.T) {
	meta := Extract("song.mp3", "audio/mpeg", nil)
	assert.Equal(t, "audio", meta[models.MediaType])
	assert.Equal(t, "MP3", meta[models.MediaFormat])

	meta = Extract("clip.mp4", "video/mp4", nil)
	assert.Equal(t, "video", meta[models.MediaType])
	assert.Equal(t, "MP4", meta[models.MediaFormat])
}

func TestExtractUnknownContentTypeYieldsEmptyMap(t *testing.T) {
	meta := Extract("notes.txt", "text/plain", nil)
	assert.Empty(t, meta)
}

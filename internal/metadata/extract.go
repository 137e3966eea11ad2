// Package metadata enriches freshly uploaded files with a key-value map:
// pixel dimensions for images, format and media type for audio and video.
// Extraction is best-effort; an undecodable file simply yields fewer keys.
package metadata

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mediavault/backend/internal/models"
)

// Extract derives the enrichment map for a stored file. The reader must be
// positioned at the start of the bytes; only the header is consumed for
// image probing.
func Extract(name, contentType string, reader io.Reader) map[string]string {
	meta := map[string]string{}

	switch {
	case strings.HasPrefix(contentType, "image/"):
		meta[models.MediaType] = "image"
		if reader != nil {
			if cfg, _, err := image.DecodeConfig(reader); err == nil {
				meta[models.MediaDimensions] = strconv.Itoa(cfg.Width) + "x" + strconv.Itoa(cfg.Height)
			}
		}
	case strings.HasPrefix(contentType, "audio/"):
		meta[models.MediaType] = "audio"
		if format := extFormat(name); format != "" {
			meta[models.MediaFormat] = format
		}
	case strings.HasPrefix(contentType, "video/"):
		meta[models.MediaType] = "video"
		if format := extFormat(name); format != "" {
			meta[models.MediaFormat] = format
		}
	}

	return meta
}

func extFormat(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return strings.ToUpper(ext)
}

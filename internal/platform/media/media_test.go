package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		folder      string
		contentType string
		wantPrefix  string
		wantSuffix  string
	}{
		{"png image", "skydeals/images", "image/png", "skydeals/images/", ".png"},
		{"jpeg image", "skydeals/images", "image/jpeg", "skydeals/images/", ".jpg"},
		{"mp4 video", "skydeals/videos", "video/mp4", "skydeals/videos/", ".mp4"},
		{"unknown type", "misc", "application/octet-stream", "misc/", ".bin"},
		{"folder slashes trimmed", "/misc/", "image/png", "misc/", ".png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key := objectKey(tt.folder, tt.contentType)
			assert.True(t, strings.HasPrefix(key, tt.wantPrefix), "key %q", key)
			assert.True(t, strings.HasSuffix(key, tt.wantSuffix), "key %q", key)
		})
	}
}

func TestObjectKey_Unique(t *testing.T) {
	t.Parallel()

	first := objectKey("images", "image/png")
	second := objectKey("images", "image/png")
	assert.NotEqual(t, first, second)
}

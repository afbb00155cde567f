package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImageService(t *testing.T, cardRoot string) *ImageService {
	t.Helper()
	svc, err := NewImageService(context.Background(), "key", "secret", "nyc3", "cardbinder", cardRoot)
	require.NoError(t, err)
	return svc
}

func TestImageObjectKey(t *testing.T) {
	svc := newTestImageService(t, "/cards/")

	key, err := svc.objectKey("user-1", "card-9", "front.jpg")
	require.NoError(t, err)
	assert.Equal(t, "cards/user-1/card-9/front.jpg", key)

	// Path components in the upload filename must not escape the card prefix.
	key, err = svc.objectKey("user-1", "card-9", "../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "cards/user-1/card-9/passwd", key)

	key, err = svc.objectKey("user-1", "card-9", `photos\back.png`)
	require.NoError(t, err)
	assert.Equal(t, "cards/user-1/card-9/back.png", key)

	_, err = svc.objectKey("user-1", "card-9", "")
	assert.Error(t, err)
}

func TestImageObjectKeyWithoutRoot(t *testing.T) {
	svc := newTestImageService(t, "")

	key, err := svc.objectKey("user-1", "card-9", "front.jpg")
	require.NoError(t, err)
	assert.Equal(t, "user-1/card-9/front.jpg", key)
}

func TestImagePublicURL(t *testing.T) {
	svc := newTestImageService(t, "cards")

	url := svc.PublicURL("cards/user-1/card-9/front.jpg")
	assert.Equal(t, "https://cardbinder.nyc3.digitaloceanspaces.com/cards/user-1/card-9/front.jpg", url)

	assert.True(t, svc.Hosts(url))
	assert.False(t, svc.Hosts("https://example.com/front.jpg"))
	assert.False(t, svc.Hosts("https://other.nyc3.digitaloceanspaces.com/front.jpg"))
}

func TestImageContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", contentTypeFor("front.JPG"))
	assert.Equal(t, "image/jpeg", contentTypeFor("front.jpeg"))
	assert.Equal(t, "image/png", contentTypeFor("back.png"))
	assert.Equal(t, "image/webp", contentTypeFor("scan.webp"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("notes.txt"))
}

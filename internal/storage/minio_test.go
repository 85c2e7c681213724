package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFileExtension(t *testing.T) {
	assert.Equal(t, ".jpg", GetFileExtension("image/jpeg"))
	assert.Equal(t, ".png", GetFileExtension("image/png"))
	assert.Equal(t, ".heic", GetFileExtension("image/heic"))
	assert.Equal(t, ".webp", GetFileExtension("image/webp"))
	assert.Equal(t, ".bin", GetFileExtension("text/plain"))
	assert.Equal(t, ".bin", GetFileExtension(""))
}

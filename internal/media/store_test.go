package media

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURL(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff, 0xe0}
	ct, data, err := DecodeDataURL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, raw, data)

	for _, bad := range []string{
		"",
		"image/jpeg;base64,AAAA",
		"data:text/plain;base64,AAAA",
		"data:image/png,AAAA",
		"data:image/png;base64,!!!",
		"data:image/png;base64,",
	} {
		_, _, err := DecodeDataURL(bad)
		assert.ErrorIs(t, err, ErrInvalidDataURL, bad)
	}
}

func TestLocalPut(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(filepath.Join(dir, "uploads"))

	url, err := store.Put(context.Background(), "../escape.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/escape.png", url)

	got, err := os.ReadFile(filepath.Join(dir, "uploads", "escape.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(got))
}

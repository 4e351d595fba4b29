package blob

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := NewPhotoKey("Toby.JPG")

	info, err := s.Put(ctx, key, strings.NewReader("jpeg-bytes"), PutOptions{ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, key, info.Key)
	assert.EqualValues(t, len("jpeg-bytes"), info.Size)

	_, err = s.Put(ctx, key, strings.NewReader("other"), PutOptions{})
	assert.ErrorIs(t, err, ErrExists)

	got, rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, key, got.Key)

	deleted, err := s.Delete(ctx, key)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Delete(ctx, key)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())

	_, _, err := NewMemory().Get(context.Background(), "mascotas/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilesystemStore(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, s)

	_, _, err = s.Get(context.Background(), "mascotas/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Store_MockTransport(t *testing.T) {
	exerciseStore(t, newMockS3(t))
}

func TestInvalidKeysRejected(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "/abs.jpg", "../escape.jpg", "a//b.jpg", "mascotas/./x.jpg"} {
		_, err := s.Put(context.Background(), key, bytes.NewReader(nil), PutOptions{})
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestNewPhotoKey(t *testing.T) {
	k := NewPhotoKey("foto de Toby.PNG")
	assert.True(t, strings.HasPrefix(k, "mascotas/"))
	assert.True(t, strings.HasSuffix(k, ".png"))
	assert.NotEqual(t, k, NewPhotoKey("foto de Toby.PNG"))
	assert.False(t, strings.Contains(NewPhotoKey("weird.ext with space"), " "))
}

func TestOpen_Drivers(t *testing.T) {
	s, err := Open(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, s.Driver())

	s, err = Open(context.Background(), Options{Driver: DriverFilesystem, FSRoot: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())

	_, err = Open(context.Background(), Options{Driver: "ftp"})
	assert.Error(t, err)

	_, err = Open(context.Background(), Options{Driver: DriverS3})
	assert.Error(t, err)
}

func TestHandler_ServesStoredBlob(t *testing.T) {
	s := NewMemory()
	key := "mascotas/toby.jpg"
	_, err := s.Put(context.Background(), key, strings.NewReader("img"), PutOptions{ContentType: "image/jpeg"})
	require.NoError(t, err)

	h := Handler(s, "/media/")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/"+key, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "img", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/mascotas/nope.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package media

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndRemoveItemImage(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	ref, err := s.SaveItemImage([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "item_images/"))
	require.True(t, strings.HasSuffix(ref, ".jpg"))
	require.True(t, s.Exists(ref))

	data, err := os.ReadFile(filepath.Join(s.Root, ref))
	require.NoError(t, err)
	require.Equal(t, "jpeg bytes", string(data))

	require.NoError(t, s.Remove(ref))
	require.False(t, s.Exists(ref))

	// Removing again is fine.
	require.NoError(t, s.Remove(ref))
	require.NoError(t, s.Remove(""))
}

func TestSaveItemImageUniqueNames(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	a, err := s.SaveItemImage([]byte("a"))
	require.NoError(t, err)
	b, err := s.SaveItemImage([]byte("b"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestRemoveRejectsForeignPaths(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for _, ref := range []string{"../etc/passwd", "item_images/../../x", "other/file.jpg", "item_images/"} {
		require.Error(t, s.Remove(ref), ref)
	}
}

func TestHandlerServesFiles(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ref, err := s.SaveItemImage([]byte("jpeg bytes"))
	require.NoError(t, err)

	h := http.StripPrefix("/media/", s.Handler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/"+ref, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "jpeg bytes", rec.Body.String())
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/item_images/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

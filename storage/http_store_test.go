package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	var gotPath, gotAuth, gotCT string
	var gotLen int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotLen = len(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "fotos-viaturas", "service-key")
	data := make([]byte, 2048)
	url, err := s.Upload(context.Background(), "p1/frontal.jpg", "image/jpeg", data)
	require.NoError(t, err)

	assert.Equal(t, "/object/fotos-viaturas/p1/frontal.jpg", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "image/jpeg", gotCT)
	assert.Equal(t, len(data), gotLen)
	assert.Equal(t, srv.URL+"/object/public/fotos-viaturas/p1/frontal.jpg", url)
}

func TestUploadErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bucket not found", http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "b", "k")
	_, err := s.Upload(context.Background(), "x.jpg", "image/jpeg", []byte("x"))
	assert.ErrorContains(t, err, "status 404")

	_, err = s.Upload(context.Background(), "x.jpg", "image/jpeg", make([]byte, MaxObjectSize+1))
	assert.ErrorIs(t, err, ErrTooLarge)

	unset := NewHTTPStore("", "b", "k")
	_, err = unset.Upload(context.Background(), "x.jpg", "image/jpeg", []byte("x"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPhotoPaths(t *testing.T) {
	assert.Equal(t, "p1/frontal.jpg", CheckinPhotoPath("p1", "frontal", "IMG_0042.JPG"))
	assert.Equal(t, "devolucao/d1/traseira.png", CheckoutPhotoPath("d1", "traseira", "foto.png"))
	// no extension falls back to .jpg
	assert.Equal(t, "p1/outra.jpg", CheckinPhotoPath("p1", "outra", "camera-upload"))
}

package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookclubhq/bookclub-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartImageRequest(t *testing.T, folder string, withImage bool) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if withImage {
		part, err := mw.CreateFormFile("image", "cover.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("not-a-real-jpeg"))
		require.NoError(t, err)
	}
	if folder != "" {
		require.NoError(t, mw.WriteField("folder", folder))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload_RequiresConfiguredStore(t *testing.T) {
	prev := blobStore
	blobStore = nil
	defer func() { blobStore = prev }()

	rec := httptest.NewRecorder()
	Upload(rec, multipartImageRequest(t, "", true))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUpload_RejectsMissingImage(t *testing.T) {
	prev := blobStore
	blobStore = &services.BlobStore{}
	defer func() { blobStore = prev }()

	rec := httptest.NewRecorder()
	Upload(rec, multipartImageRequest(t, "", false))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_RejectsUnknownFolder(t *testing.T) {
	prev := blobStore
	blobStore = &services.BlobStore{}
	defer func() { blobStore = prev }()

	// The folder check runs after the image field is read and before the
	// store is touched, so no upload happens here.
	rec := httptest.NewRecorder()
	Upload(rec, multipartImageRequest(t, "../outside", true))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geopost/internal/platform/apperr"
	"github.com/taibuivan/geopost/internal/post"
	"github.com/taibuivan/geopost/pkg/uuid"
)

func postRouter(f *fixture, devRoutes bool) http.Handler {
	deps := f.deps()
	handler := post.NewHandler(post.NewService(deps), post.NewOrchestrator(deps), 1024)

	router := chi.NewRouter()
	router.Mount("/post", handler.Routes())
	router.Mount("/userpost", handler.RecordRoutes(devRoutes))
	router.Mount("/userposts", handler.ListRoutes())
	return router
}

func creationForm(t *testing.T, fields map[string]string, images ...[]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for i, image := range images {
		part, err := writer.CreateFormFile(post.FormImages, "image"+string(rune('a'+i)))
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func serve(router http.Handler, method, target, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	request := httptest.NewRequest(method, target, body)
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Code
}

/*
TestHandler_CreatePost runs the full creation from a multipart form.
*/
func TestHandler_CreatePost(t *testing.T) {
	f := newFixture()
	f.assets.On("Upload", mock.Anything, avatarUpload).Return(avatarKey, nil).Once()
	f.assets.On("Upload", mock.Anything, pictureUpload).Return(imageKey, nil).Once()
	f.posts.On("Create", mock.Anything, mock.MatchedBy(func(entity *post.Post) bool {
		return assert.ObjectsAreEqual([]string{"beach", "sunset"}, entity.Tags) && entity.Location == "Lisbon"
	})).Return(nil).Once()

	body, contentType := creationForm(t, map[string]string{
		"author_id": authorID,
		"title":     "Sunset",
		"location":  "Lisbon",
		"tags":      "Beach, sunset",
	}, avatarUpload.Data, pictureUpload.Data)

	recorder := serve(postRouter(f, false), http.MethodPost, "/post", contentType, body)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var created struct {
		Data post.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.True(t, uuid.Valid(created.Data.AccessKey))
	assert.Equal(t, imageKey, created.Data.ImageKey)
	f.assertExpectations(t)
}

/*
TestHandler_CreatePost_Rejections fails before any upload.
*/
func TestHandler_CreatePost_Rejections(t *testing.T) {
	fields := map[string]string{"author_id": authorID, "title": "Sunset"}

	tests := []struct {
		name   string
		images [][]byte
		status int
	}{
		{name: "no_images", images: nil, status: http.StatusBadRequest},
		{name: "one_image", images: [][]byte{avatarUpload.Data}, status: http.StatusBadRequest},
		{name: "not_an_image", images: [][]byte{avatarUpload.Data, []byte("plain text")}, status: http.StatusBadRequest},
		{name: "too_large", images: [][]byte{avatarUpload.Data, bytes.Repeat([]byte{0xff}, 2048)}, status: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			body, contentType := creationForm(t, fields, tt.images...)

			recorder := serve(postRouter(f, false), http.MethodPost, "/post", contentType, body)

			assert.Equal(t, tt.status, recorder.Code, recorder.Body.String())
			f.assets.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		})
	}
}

/*
TestHandler_DeletePost_Unknown answers 404.
*/
func TestHandler_DeletePost_Unknown(t *testing.T) {
	f := newFixture()
	accessKey := uuid.NewRandom()
	f.posts.On("FindByAccessKey", mock.Anything, accessKey).Return(nil, apperr.NotFound("Post")).Once()

	recorder := serve(postRouter(f, false), http.MethodDelete, "/post/"+accessKey, "", nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, apperr.CodeNotFound, errorCode(t, recorder))
}

/*
TestHandler_ListPosts applies the filter rules.
*/
func TestHandler_ListPosts(t *testing.T) {
	f := newFixture()
	f.posts.On("FindMatching", mock.Anything, post.Filter{}, 100).Return([]*post.Post{storedPost()}, nil).Once()
	router := postRouter(f, false)

	recorder := serve(router, http.MethodPost, "/userposts", "application/json", bytes.NewBufferString(`{"filter":{}}`))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var listed struct {
		Data []post.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &listed))
	assert.Len(t, listed.Data, 1)

	recorder = serve(router, http.MethodPost, "/userposts", "application/json", bytes.NewBufferString(`{"filter":{"body":"x"}}`))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Invalid search filters")

	f.assertExpectations(t)
}

/*
TestHandler_UpdatePost_Immutable rejects access key changes.
*/
func TestHandler_UpdatePost_Immutable(t *testing.T) {
	f := newFixture()

	recorder := serve(postRouter(f, true), http.MethodPatch, "/userpost/"+uuid.New(), "application/json",
		bytes.NewBufferString(`{"update":{"access_key":"stolen"}}`))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.True(t, strings.Contains(recorder.Body.String(), "access_key"))
	f.posts.AssertNotCalled(t, "UpdateByID", mock.Anything, mock.Anything, mock.Anything)
}

/*
TestHandler_GetPost returns the stored document.
*/
func TestHandler_GetPost(t *testing.T) {
	f := newFixture()
	stored := storedPost()
	f.posts.On("FindByID", mock.Anything, stored.ID).Return(stored, nil).Once()

	recorder := serve(postRouter(f, false), http.MethodGet, "/userpost/"+stored.ID, "", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), stored.AccessKey)
	f.assertExpectations(t)
}

/*
TestHandler_DevRoutes are only mounted when enabled.
*/
func TestHandler_DevRoutes(t *testing.T) {
	f := newFixture()
	accessKey := uuid.NewRandom()
	stored := storedPost()
	f.posts.On("DeleteByAccessKey", mock.Anything, accessKey).Return(stored, nil).Once()

	closed := postRouter(f, false)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(closed, http.MethodDelete, "/userpost/"+accessKey, "", nil).Code)

	open := postRouter(f, true)
	assert.Equal(t, http.StatusOK, serve(open, http.MethodDelete, "/userpost/"+accessKey, "", nil).Code)

	f.assertExpectations(t)
}

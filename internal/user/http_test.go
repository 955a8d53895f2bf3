// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geopost/internal/platform/apperr"
	"github.com/taibuivan/geopost/internal/user"
)

func userRouter(repository *mockRepository) http.Handler {
	service := user.NewService(repository, func() time.Time { return createdAt })
	return user.NewHandler(service).Routes()
}

/*
TestHandler_CreateUser stores a user and answers 201 with the envelope.
*/
func TestHandler_CreateUser(t *testing.T) {
	repository := &mockRepository{}
	repository.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).Return(nil).Once()

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ada","email":"ada@example.com"}`))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	userRouter(repository).ServeHTTP(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)

	var body struct {
		Data user.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "Ada", body.Data.Name)
	assert.NotEmpty(t, body.Data.ID)
	repository.AssertExpectations(t)
}

/*
TestHandler_UserErrors maps service failures onto status codes.
*/
func TestHandler_UserErrors(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		repository := &mockRepository{}
		repository.On("Create", mock.Anything, mock.Anything).Return(apperr.Conflict("Email already registered")).Once()

		request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ada","email":"ada@example.com"}`))
		recorder := httptest.NewRecorder()
		userRouter(repository).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("malformed_id", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		userRouter(&mockRepository{}).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/42", nil))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unknown_user", func(t *testing.T) {
		repository := &mockRepository{}
		repository.On("DeleteByID", mock.Anything, userID).Return(nil, apperr.NotFound("User")).Once()

		recorder := httptest.NewRecorder()
		userRouter(repository).ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/"+userID, nil))

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

/*
TestHandler_UpdateUser applies the wrapped patch.
*/
func TestHandler_UpdateUser(t *testing.T) {
	repository := &mockRepository{}
	repository.On("UpdateByID", mock.Anything, userID, mock.MatchedBy(func(patch user.Patch) bool {
		return patch.Name != nil && *patch.Name == "Grace" && patch.Email == nil
	})).Return(&user.User{ID: userID, Name: "Grace"}, nil).Once()

	request := httptest.NewRequest(http.MethodPatch, "/"+userID, strings.NewReader(`{"update":{"name":"Grace"}}`))
	recorder := httptest.NewRecorder()
	userRouter(repository).ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"name":"Grace"`)
	repository.AssertExpectations(t)
}

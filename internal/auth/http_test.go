// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geopost/internal/auth"
)

type issueCounter struct{ issued int }

func (counter *issueCounter) TokenIssued() { counter.issued++ }

/*
TestHandler_Issue checks the POST /auth response body.
*/
func TestHandler_Issue(t *testing.T) {
	store := auth.NewTokenStore(time.Hour, fixedClock(epoch))
	counter := &issueCounter{}
	router := auth.NewHandler(store, counter).Routes()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/", nil))

	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data struct {
			Token     string `json:"token"`
			Timestamp int64  `json:"timestamp"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))

	assert.NotEmpty(t, body.Data.Token)
	assert.Equal(t, epoch.UnixMilli(), body.Data.Timestamp)
	assert.NoError(t, store.Verify(body.Data.Token, epoch))
	assert.Equal(t, 1, counter.issued)
}

/*
TestHandler_Revoke checks DELETE /auth with and without a token header.
*/
func TestHandler_Revoke(t *testing.T) {
	store := auth.NewTokenStore(time.Hour, fixedClock(epoch))
	router := auth.NewHandler(store, nil).Routes()

	token, err := store.Issue()
	require.NoError(t, err)

	t.Run("revokes_token", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodDelete, "/", nil)
		request.Header.Set("Token", token.ID)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.ErrorIs(t, store.Verify(token.ID, epoch), auth.ErrTokenMissing)
	})

	t.Run("unknown_token_is_noop", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodDelete, "/", nil)
		request.Header.Set("Token", token.ID)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})

	t.Run("missing_header", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/", nil))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

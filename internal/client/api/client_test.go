package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/keywarden/internal/common"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/login", r.URL.Path)

		var req credentialsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)
		assert.Equal(t, "pw1", req.Password)

		_ = json.NewEncoder(w).Encode(tokenResponse{Token: "1_secret"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	require.NoError(t, c.Login(context.Background(), "alice", []byte("pw1")))
	assert.Equal(t, "1_secret", c.Token())
}

func TestBearerSentOnAuthenticatedCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer 1_secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string][]Course{"courses": {{ID: 1, Name: "Databases"}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	c.token = "1_secret"

	courses, err := c.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Databases", courses[0].Name)
}

func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: common.ErrInvalidCredentials},
		{name: "conflict", status: http.StatusConflict, want: common.ErrAlreadyExists},
		{name: "not found", status: http.StatusNotFound, want: common.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, time.Second)
			err := c.Login(context.Background(), "alice", []byte("pw1"))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogoutClearsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	c.token = "1_secret"

	require.NoError(t, c.Logout(context.Background()))
	assert.Empty(t, c.Token())
}

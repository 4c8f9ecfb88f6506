package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ankur315-bit/SmartAttend-TechSprint/pkg/errors"
)

func TestRosterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/students", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"students":[{"id":"s1","roll_no":"CS-101","name":"Asha"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	roster, err := client.Roster(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "Asha", roster[0].Name)
}

func TestNoticesPagingAndTotalFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"notices":[{"title":"A"},{"title":"B"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	notices, total, err := client.Notices(context.Background(), "tok", 3, 10)
	require.NoError(t, err)
	assert.Len(t, notices, 2)
	// No total in the body: fall back to the page length.
	assert.Equal(t, 2, total)
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Timetable(context.Background(), "expired")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestUpstreamMessageSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"maintenance window"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.StudentReport(context.Background(), "tok")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	assert.Equal(t, "maintenance window", appErr.Message)
}

func TestSubmitPostsRecord(t *testing.T) {
	var got SubmitRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/attendance/records", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.Submit(context.Background(), "tok", SubmitRecord{
		StudentID: "s1",
		Subject:   "DSA",
		Date:      "2024-01-01",
		Status:    "Present",
	})
	require.NoError(t, err)
	assert.Equal(t, "DSA", got.Subject)
}

func TestSubmitErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.Submit(context.Background(), "tok", SubmitRecord{Subject: "DSA"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)
}

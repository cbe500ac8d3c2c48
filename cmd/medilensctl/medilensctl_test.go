package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMedsList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/medications", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":1,"medications":[{"name":"타이레놀정","startDate":"2024-01-10","endDate":"2024-01-12","days":3,"usageTime":"식후 30분"}]}`))
	}))
	defer srv.Close()

	var out strings.Builder
	require.NoError(t, runMedsList(srv.URL, &out))
	assert.Contains(t, out.String(), "타이레놀정")
	assert.Contains(t, out.String(), "2024-01-12")
}

func TestRunMedsListEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":0,"medications":[]}`))
	}))
	defer srv.Close()

	var out strings.Builder
	require.NoError(t, runMedsList(srv.URL, &out))
	assert.Contains(t, out.String(), "no medications registered")
}

func TestRunMedsDeleteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not Found","code":404,"message":"medication not found"}`))
	}))
	defer srv.Close()

	var out strings.Builder
	err := runMedsDelete(srv.URL, "없는약", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 404")
	assert.Contains(t, err.Error(), "medication not found")
}

func TestRunMedsDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/medications/타이레놀정", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"타이레놀정","deleted":2}`))
	}))
	defer srv.Close()

	var out strings.Builder
	require.NoError(t, runMedsDelete(srv.URL, "타이레놀정", &out))
	assert.Contains(t, out.String(), "deleted 2 record(s)")
}

func TestRunRegister(t *testing.T) {
	img := filepath.Join(t.TempDir(), "rx.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\nfake"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/prescriptions", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "2024-01-10", r.FormValue("date"))
		f, _, err := r.FormFile("image")
		if assert.NoError(t, err) {
			data, _ := io.ReadAll(f)
			assert.Contains(t, string(data), "PNG")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"count":1,"medications":[{"name":"세레온캡슐","startDate":"2024-01-10","endDate":"2024-01-23","days":14}]}`))
	}))
	defer srv.Close()

	var out strings.Builder
	require.NoError(t, runRegister(srv.URL, img, "2024-01-10", &out))
	assert.Contains(t, out.String(), "registered 1 medication(s)")
	assert.Contains(t, out.String(), "세레온캡슐")
}

func TestRunRegisterMissingFile(t *testing.T) {
	var out strings.Builder
	err := runRegister("http://127.0.0.1:1", filepath.Join(t.TempDir(), "missing.png"), "", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image")
}

func TestRunToday(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/schedule", r.URL.Path)
		assert.Equal(t, "2024-01-11", r.URL.Query().Get("date"))
		_, _ = w.Write([]byte(`{"date":"2024-01-11","items":[{"name":"A","usageTime":"식후","remainingDays":2,"taken":true}],"allTaken":true}`))
	}))
	defer srv.Close()

	var out strings.Builder
	require.NoError(t, runToday(srv.URL, "2024-01-11", &out))
	assert.Contains(t, out.String(), "[x]")
	assert.Contains(t, out.String(), "2 day(s) left")
	assert.Contains(t, out.String(), "all doses taken")
}

func TestRunCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/adherence/2024-01-11/A", r.URL.Path)
		var body map[string]bool
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.False(t, body["taken"])
		_, _ = w.Write([]byte(`{"date":"2024-01-11","name":"A","taken":false}`))
	}))
	defer srv.Close()

	var out strings.Builder
	require.NoError(t, runCheck(srv.URL, "2024-01-11", "A", false, &out))
	assert.Contains(t, out.String(), "not taken")
}

func TestRunCalendar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-01-31", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(`{"from":"2024-01-01","to":"2024-01-31","bars":[{"name":"A","start":"2024-01-10","end":"2024-01-13"}],"adherentDays":["2024-01-10","2024-01-11"]}`))
	}))
	defer srv.Close()

	var out strings.Builder
	require.NoError(t, runCalendar(srv.URL, "2024-01-01", "2024-01-31", &out))
	assert.Contains(t, out.String(), "until 2024-01-13")
	assert.Contains(t, out.String(), "fully taken: 2024-01-10, 2024-01-11")
}

func TestRunReset(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = r.Method == http.MethodDelete && r.URL.Path == "/api/data"
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var out strings.Builder
	require.NoError(t, runReset(srv.URL, &out))
	assert.True(t, called)
	assert.Contains(t, out.String(), "all data deleted")
}

package sheet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "centerhub/internal/errors"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "full edit link",
			input: "https://docs.google.com/spreadsheets/d/1Qy8XewQZHiByRdAe1Zq0m0AxuOtRy1mwt7kN7eME7p8/edit?usp=sharing",
			want:  "1Qy8XewQZHiByRdAe1Zq0m0AxuOtRy1mwt7kN7eME7p8",
		},
		{
			name:  "link with dash and underscore",
			input: "https://docs.google.com/spreadsheets/d/ab-c_D9/edit#gid=0",
			want:  "ab-c_D9",
		},
		{name: "bare id", input: "abc123", want: "abc123"},
		{name: "bare id trimmed", input: "  abc123 \n", want: "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractID(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractIDRejectsBlank(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := ExtractID(in)
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidSource(err))
	}
}

func TestURLs(t *testing.T) {
	assert.Equal(t,
		"https://docs.google.com/spreadsheets/d/xyz/export?format=csv",
		ExportURL(DefaultBaseURL, "xyz"))
	assert.Equal(t,
		"https://docs.google.com/spreadsheets/d/xyz/edit?usp=sharing",
		EditURL("", "xyz"))
	assert.Equal(t, "http://host/d/xyz/export?format=csv", ExportURL("http://host/d", "xyz"))
}

func TestFetch(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("নাম,উপজেলা\nA,B\n"))
	}))
	defer srv.Close()

	fixed := time.UnixMilli(1768473000000)
	c := NewClient(5*time.Second, zap.NewNop(),
		WithBaseURL(srv.URL+"/d/"),
		WithHTTPClient(srv.Client()),
		WithClock(func() time.Time { return fixed }))

	body, err := c.Fetch(context.Background(), "sheet42")
	require.NoError(t, err)
	assert.Equal(t, "নাম,উপজেলা\nA,B\n", body)
	assert.Equal(t, "/d/sheet42/export", gotPath)
	assert.Equal(t, "format=csv&cache_bust=1768473000000", gotQuery)
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, nil, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := c.Fetch(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsFetch(err))

	var fe *apperrors.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(time.Second, zap.NewNop(), WithBaseURL(url))
	_, err := c.Fetch(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, apperrors.IsFetch(err))
}

func TestFetchHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(0, zap.NewNop(), WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := c.Fetch(ctx, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchRejectsOversizedExport(t *testing.T) {
	body := "Center Name\nAlpha"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	exact := NewClient(5*time.Second, zap.NewNop(), WithBaseURL(srv.URL), WithHTTPClient(srv.Client()),
		WithMaxBodySize(int64(len(body))))
	text, err := exact.Fetch(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, body, text)

	small := NewClient(5*time.Second, zap.NewNop(), WithBaseURL(srv.URL), WithHTTPClient(srv.Client()),
		WithMaxBodySize(int64(len(body)-1)))
	_, err = small.Fetch(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, apperrors.IsFetch(err))
}

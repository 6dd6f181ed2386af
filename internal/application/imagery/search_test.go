package imagery

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader 足以让 mimetype 识别为 image/png
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestSearchProviderFetchesThroughProxy(t *testing.T) {
	var gotQuery, gotIndex, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotIndex = r.URL.Query().Get("index")
		w.Header().Set("Content-Type", "image/jpeg; charset=binary")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	p := NewSearchProvider(srv.URL+"/api/", srv.Client())
	assert.Equal(t, "search", p.Name())

	uri, err := p.Image(context.Background(), StepImageRequest{
		Index: 2,
		Title: "Patch + clamp",
		Tools: []string{"Epoxy putty", "Clamp"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/fetch-image", gotPath)
	assert.Equal(t, "patch,clamp,epoxy putty,repair", gotQuery)
	assert.Equal(t, "2", gotIndex)
	assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")), uri)
}

func TestSearchProviderSniffsUntypedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	uri, err := NewSearchProvider(srv.URL, srv.Client()).Image(context.Background(), StepImageRequest{Title: "Rebuild finish"})
	require.NoError(t, err)
	assert.Contains(t, uri, "data:image/png;base64,")
}

func TestSearchProviderFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		noImage bool
	}{
		{
			name: "upstream error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
			},
			noImage: true,
		},
		{
			name: "not an image",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html></html>"))
			},
			noImage: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewSearchProvider(srv.URL, srv.Client()).Image(context.Background(), StepImageRequest{Title: "Rebuild finish"})
			require.Error(t, err)
			assert.Equal(t, tt.noImage, errors.Is(err, ErrNoImage))
		})
	}
}

package transport

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = "<html><body>Chelsea 3-0 Middlesbrough</body></html>"

func compress(t *testing.T, encoding string) []byte {
	var buf bytes.Buffer
	switch encoding {
	case "gzip":
		w := gzip.NewWriter(&buf)
		_, err := w.Write([]byte(page))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "br":
		w := brotli.NewWriter(&buf)
		_, err := w.Write([]byte(page))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	default:
		buf.WriteString(page)
	}
	return buf.Bytes()
}

func TestGetDecodesBody(t *testing.T) {
	for _, encoding := range []string{"", "gzip", "br"} {
		t.Run("encoding "+encoding, func(t *testing.T) {
			body := compress(t, encoding)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
				if encoding != "" {
					w.Header().Set("Content-Encoding", encoding)
				}
				_, _ = w.Write(body)
			}))
			defer srv.Close()

			// a bare transport leaves Content-Encoding for us to handle
			client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
			got, err := GetWith(context.Background(), client, srv.URL)
			require.NoError(t, err)
			assert.Equal(t, page, string(got))
		})
	}
}

func TestGetErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := GetWith(context.Background(), srv.Client(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClientIsShared(t *testing.T) {
	CABundlePath = ""
	assert.Same(t, Client(), Client())
}

package transport

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/richard-senior/predictomatic/internal/logger"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

var (
	httpClient *http.Client
	clientOnce sync.Once
)

// CABundlePath is an extra PEM bundle trusted alongside the system roots,
// for networks that intercept TLS
var CABundlePath = filepath.Join(os.Getenv("HOME"), ".ssh/zscaler_ca_bundle.pem")

func loadCABundle() ([]byte, error) {
	if CABundlePath == "" {
		return nil, fmt.Errorf("no CA bundle configured")
	}
	return os.ReadFile(CABundlePath)
}

// Client returns the shared HTTP client, building it on first use
func Client() *http.Client {
	clientOnce.Do(func() {
		rootCAs, err := x509.SystemCertPool()
		if err != nil {
			logger.Warn("Failed to get system cert pool", err)
			rootCAs = x509.NewCertPool()
		}

		if bundle, err := loadCABundle(); err != nil {
			logger.Debug("Proceeding without extra CA bundle", err)
		} else if ok := rootCAs.AppendCertsFromPEM(bundle); !ok {
			logger.Warn("Failed to append CA bundle", CABundlePath)
		} else {
			logger.Info("Added CA bundle to root CAs", CABundlePath)
		}

		httpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{RootCAs: rootCAs},
				Proxy:           http.ProxyFromEnvironment,
			},
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		}
	})
	return httpClient
}

// Get fetches url with browser-like headers and returns the decoded body
func Get(ctx context.Context, url string) ([]byte, error) {
	return GetWith(ctx, Client(), url)
}

// GetWith is Get using the given client
func GetWith(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,text/csv,*/*;q=0.8")
	req.Header.Set("Referer", "http://www.google.com/")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s returned error status %d", url, resp.StatusCode)
	}

	reader, err := Decode(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return data, nil
}

// Decode wraps body in a reader for the given Content-Encoding.
// Unknown encodings are passed through unchanged.
func Decode(contentEncoding string, body io.ReadCloser) (io.ReadCloser, error) {
	switch contentEncoding {
	case "gzip":
		logger.Debug("Handling gzip compressed content")
		r, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return r, nil
	case "deflate":
		logger.Debug("Handling deflate compressed content")
		return flate.NewReader(body), nil
	case "br":
		logger.Debug("Handling brotli compressed content")
		return io.NopCloser(brotli.NewReader(body)), nil
	case "", "identity":
		return body, nil
	default:
		logger.Warn("Unknown content encoding:", contentEncoding)
		return body, nil
	}
}

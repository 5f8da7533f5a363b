package scrape

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/richard-senior/predictomatic/internal/logger"
	"github.com/richard-senior/predictomatic/pkg/results"
	"github.com/richard-senior/predictomatic/pkg/transport"
)

// maxMarkdownDump bounds the page dump logged when a page yields nothing
const maxMarkdownDump = 10000

// Getter fetches the body of a URL
type Getter func(ctx context.Context, url string) ([]byte, error)

// Importer fetches results pages and CSVs, caching raw downloads on disk
type Importer struct {
	CacheDir string
	Get      Getter
	// Refresh ignores cached copies
	Refresh bool
}

func NewImporter(cacheDir string) *Importer {
	return &Importer{CacheDir: cacheDir, Get: transport.Get}
}

// cacheFile names the cached copy of rawURL after a name based UUID of the
// URL, keeping the URL's extension
func (im *Importer) cacheFile(rawURL string) string {
	ext := ".html"
	if u, err := url.Parse(rawURL); err == nil && path.Ext(u.Path) != "" {
		ext = path.Ext(u.Path)
	}
	return filepath.Join(im.CacheDir, uuid.NewSHA1(uuid.NameSpaceURL, []byte(rawURL)).String()+ext)
}

// Fetch returns the body of rawURL, from the cache when present
func (im *Importer) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	cached := ""
	if im.CacheDir != "" {
		cached = im.cacheFile(rawURL)
		if !im.Refresh {
			if data, err := os.ReadFile(cached); err == nil {
				logger.Debug("Returning data from cached file for", rawURL)
				return data, nil
			}
		}
	}

	logger.Info("Fetching", rawURL)
	data, err := im.Get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data from external source: %w", err)
	}

	if cached != "" {
		if err := os.MkdirAll(im.CacheDir, 0755); err != nil {
			logger.Warn("Failed to create cache directory", im.CacheDir, err)
		} else if err := os.WriteFile(cached, data, 0644); err != nil {
			logger.Warn("Failed to write cache file", cached, err)
		} else {
			logger.Debug("Cached data to", cached)
		}
	}
	return data, nil
}

// BBC scrapes a results page. A page with no results is logged as markdown
// so layout changes are easy to spot.
func (im *Importer) BBC(ctx context.Context, rawURL string) ([]results.MatchRecord, error) {
	data, err := im.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	matches, err := ParseBBCResults(string(data))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		logEmptyPage(rawURL, string(data))
	}
	return matches, nil
}

// FootballData downloads and parses one league season
func (im *Importer) FootballData(ctx context.Context, base, league, season string) ([]results.MatchRecord, error) {
	u, err := FootballDataURL(base, league, season)
	if err != nil {
		return nil, err
	}
	data, err := im.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	return ParseFootballDataCSV(string(data))
}

// ReadFile parses a saved results page or football-data CSV, chosen by extension
func ReadFile(name string) ([]results.MatchRecord, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return ParseFootballDataCSV(string(data))
	}
	return ParseBBCResults(string(data))
}

func logEmptyPage(rawURL, html string) {
	domain := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		domain = u.Host
	}
	md, err := PageToMarkdown(html, domain)
	if err != nil {
		logger.Warn("No results found and the page could not be converted", rawURL, err)
		return
	}
	if len(md) > maxMarkdownDump {
		md = md[:maxMarkdownDump] + "\n\n... (content truncated due to size)"
	}
	logger.Warn("No results found on", rawURL, "page content follows")
	logger.Warn(md)
}

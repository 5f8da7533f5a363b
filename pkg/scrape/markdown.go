package scrape

import (
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
)

// PageToMarkdown renders a fetched page as markdown, resolving relative
// links against domain. It is used to show what a page held when nothing
// could be scraped from it.
func PageToMarkdown(html, domain string) (string, error) {
	return htmltomarkdown.ConvertString(html, converter.WithDomain(domain))
}

package models

import (
	"fmt"
	"strings"

	"github.com/rageebridwan/newsmind/internal/helpers"
	"github.com/rageebridwan/newsmind/internal/rag"
)

// Success builds the page for extracted article text. Pages with no usable
// title get the "Unknown Title" placeholder.
func Success(url, title, text string) rag.Page {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Unknown Title"
	}
	return rag.Page{
		URL:     url,
		Title:   title,
		Content: strings.TrimSpace(text),
		Source:  helpers.SourceName(url),
		Success: true,
	}
}

// Failure builds the page recorded for an unfetchable URL. It carries the
// reason in its content so callers can surface it, and ingestion drops it.
func Failure(url string, err error) rag.Page {
	return rag.Page{
		URL:     url,
		Title:   "Error",
		Content: fmt.Sprintf("Failed to scrape: %v", err),
		Source:  helpers.SourceName(url),
		Success: false,
	}
}

// Package rss fetches the update feed and maps its entries to feed items.
package rss

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/confplan/confplan/internal/confplan"
)

// Meta carries the feed-level fields surfaced in sync outcomes.
type Meta struct {
	Title         string
	Description   string
	LastBuildDate string
}

// Client fetches and parses the update feed.
type Client struct {
	http *http.Client
	url  string
}

func NewClient(url string) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		url: url,
	}
}

// Fetch grabs the feed and returns its items in document order. Descriptions
// and titles are stripped of markup before they ever reach the store.
func (c *Client) Fetch(ctx context.Context) (Meta, []confplan.FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Meta{}, nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("error getting feed url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Meta{}, nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("error parsing feed: %s", err)
	}

	meta := Meta{
		Title:         feed.Title,
		Description:   feed.Description,
		LastBuildDate: feed.Updated,
	}

	items := make([]confplan.FeedItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		guid := entry.GUID
		if guid == "" {
			guid = entry.Link
		}
		var category string
		if len(entry.Categories) > 0 {
			category = entry.Categories[0]
		}

		items = append(items, confplan.FeedItem{
			GUID:        guid,
			Title:       sanitize(entry.Title),
			Description: sanitize(entry.Description),
			Link:        entry.Link,
			PubDate:     entry.Published,
			Category:    category,
		})
	}

	return meta, items, nil
}

var stripPolicy = bluemonday.StrictPolicy()

// Removes all html tags from the string, usually a description.
//
// Also limits the length of the string so there's not a massive chunk of text being output.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = stripPolicy.Sanitize(s)
	if len(s) > 2048 {
		s = s[:2048]
	}

	return s
}

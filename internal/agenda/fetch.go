package agenda

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/confplan/confplan/internal/confplan"
)

// Client fetches the agenda page.
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

// Fetch grabs the agenda page and parses it into candidate events.
func (c *Client) Fetch(ctx context.Context) ([]confplan.AgendaEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting agenda url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return Parse(resp.Body)
}

// Package catalog fetches the session catalog and fronts it with a
// time-boxed cache.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/confplan/confplan/internal/confplan"
)

// Client fetches the full catalog in one bulk request.
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

// The catalog endpoint's envelope and record shapes.
type (
	catalogResp struct {
		Catalog []sessionRecord `json:"catalog"`
	}

	displayName struct {
		DisplayName string `json:"displayName"`
	}

	sessionRecord struct {
		ID            string `json:"id"`
		ShortID       string `json:"shortId"`
		Title         string `json:"title"`
		Abstract      string `json:"abstract"`
		StartDateTime string `json:"startDateTime"`
		EndDateTime   string `json:"endDateTime"`
		StartTime     string `json:"startTime"`
		EndTime       string `json:"endTime"`
		Day           string `json:"day"`
		Venue         displayName `json:"venue"`
		VenueRoomName string      `json:"venueRoomName"`
		Level         struct {
			Value       int    `json:"value"`
			DisplayName string `json:"displayName"`
		} `json:"level"`
		Type     displayName `json:"type"`
		Speakers []struct {
			DisplayName string `json:"displayName"`
			Company     string `json:"company"`
		} `json:"speakers"`
		Services       []displayName `json:"services"`
		Topics         []displayName `json:"topics"`
		AreaOfInterest []displayName `json:"areaOfInterest"`
		Role           []displayName `json:"role"`
		Features       []displayName `json:"features"`
		SeatCapacity   int           `json:"seatCapacity"`
		LastModified   string        `json:"lastModified"`
	}
)

// Fetch performs one logical catalog fetch. Transient failures are retried a
// couple of times with fibonacci backoff before the whole attempt fails.
func (c *Client) Fetch(ctx context.Context) ([]confplan.Session, error) {
	var out catalogResp

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return retry.RetryableError(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return fmt.Errorf("error decoding catalog: %s", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching catalog: %w", err)
	}

	sessions := make([]confplan.Session, 0, len(out.Catalog))
	for _, rec := range out.Catalog {
		sessions = append(sessions, normalize(rec))
	}

	return sessions, nil
}

func normalize(rec sessionRecord) confplan.Session {
	s := confplan.Session{
		ID:            rec.ID,
		ShortID:       rec.ShortID,
		Title:         rec.Title,
		Abstract:      rec.Abstract,
		StartDateTime: rec.StartDateTime,
		EndDateTime:   rec.EndDateTime,
		Day:           rec.Day,
		Venue:         rec.Venue.DisplayName,
		Room:          rec.VenueRoomName,
		Level:         rec.Level.Value,
		Type:          rec.Type.DisplayName,
		LastModified:  rec.LastModified,

		StartTime:    rec.StartTime,
		EndTime:      rec.EndTime,
		LevelName:    rec.Level.DisplayName,
		SeatCapacity: rec.SeatCapacity,
	}

	for _, sp := range rec.Speakers {
		s.Speakers = append(s.Speakers, sp.DisplayName)
		s.SpeakerProfiles = append(s.SpeakerProfiles, confplan.Speaker{Name: sp.DisplayName, Company: sp.Company})
	}
	s.Services = names(rec.Services)
	s.Topics = names(rec.Topics)
	s.Areas = names(rec.AreaOfInterest)
	s.Roles = names(rec.Role)
	s.Features = names(rec.Features)

	return s
}

func names(ds []displayName) confplan.StringList {
	if len(ds) == 0 {
		return nil
	}
	out := make(confplan.StringList, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.DisplayName)
	}
	return out
}

// Package agenda reconstructs host-organized events from the scraped agenda
// page. The markup has no schema, so everything here is heuristic: parsing is
// a pure function from the document to candidate events, kept apart from
// persistence so the keyword lists can change without touching the store.
package agenda

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/confplan/confplan/internal/confplan"
)

var timeRe = regexp.MustCompile(`\d{1,2}:\d{2}\s*(?:AM|PM)`)

// Venue names that mark a line as the event's location.
var venueTokens = []string{"Venetian", "MGM", "Caesars", "Mandalay", "Wynn", "Encore"}

// Ordered keyword rules for deriving the event category from the title.
// First match wins.
var categoryRules = []struct {
	keyword  string
	category string
}{
	{"keynote", "Keynote"},
	{"session", "Session"},
	{"expo", "Expo"},
	{"reception", "Social"},
	{"party", "Social"},
	{"breakfast", "Meal"},
	{"lunch", "Meal"},
}

// Parse scans the agenda document linearly over its heading and list nodes.
// Day headings set the date carried onto following nodes; any other node
// without a recognizable time token is dropped, not an error.
func Parse(r io.Reader) ([]confplan.AgendaEvent, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing agenda document: %s", err)
	}

	var nodes []*html.Node
	collectNodes(doc, &nodes)

	var (
		events      []confplan.AgendaEvent
		currentDate string
	)
	for _, n := range nodes {
		text := nodeText(n)

		if n.Data == "h2" {
			// Day headings look like "Monday, December 1".
			if strings.Contains(strings.ToLower(text), "day") {
				currentDate = strings.ReplaceAll(text, "\n", " ")
			}
			continue
		}

		ev, ok := parseEventNode(text)
		if !ok {
			continue
		}
		ev.Date = currentDate
		events = append(events, ev)
	}

	return events, nil
}

// collectNodes gathers h2/h3/li elements in document order.
func collectNodes(n *html.Node, out *[]*html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "h2", "h3", "li":
			*out = append(*out, n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectNodes(c, out)
	}
}

// nodeText flattens an element to one line per text segment.
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(parts, "\n")
}

func parseEventNode(text string) (confplan.AgendaEvent, bool) {
	timeToken := timeRe.FindString(text)
	if timeToken == "" {
		return confplan.AgendaEvent{}, false
	}

	lines := strings.Split(text, "\n")
	title := strings.TrimSpace(lines[0])

	var (
		location string
		duration string
		desc     strings.Builder
	)
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" || line == timeToken || strings.HasPrefix(line, "Learn more") {
			continue
		}
		switch {
		case containsVenue(line):
			location = line
		case strings.Contains(line, "–") && (strings.Contains(line, "AM") || strings.Contains(line, "PM")):
			duration = line
		default:
			desc.WriteString(line)
			desc.WriteString(" ")
		}
	}

	return confplan.AgendaEvent{
		Time:        timeToken,
		Title:       title,
		Description: strings.TrimSpace(desc.String()),
		Location:    location,
		Duration:    duration,
		Type:        classify(title),
	}, true
}

func containsVenue(line string) bool {
	for _, venue := range venueTokens {
		if strings.Contains(line, venue) {
			return true
		}
	}
	return false
}

func classify(title string) string {
	lowered := strings.ToLower(title)
	for _, rule := range categoryRules {
		if strings.Contains(lowered, rule.keyword) {
			return rule.category
		}
	}
	return "General"
}

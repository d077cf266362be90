// Package format renders query and sync results as plain text for the API's
// text responses.
package format

import (
	"fmt"
	"strings"

	"github.com/confplan/confplan/internal/confplan"
	"github.com/confplan/confplan/internal/planner"
	"github.com/confplan/confplan/internal/syncer"
)

// Sessions renders search results, a compact block per session.
func Sessions(sessions []confplan.Session) string {
	if len(sessions) == 0 {
		return "No sessions found matching your criteria."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d session(s):\n\n", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(&b, "%s - %s\n", orNA(s.ShortID), orNA(s.Title))
		fmt.Fprintf(&b, "  %s at %s-%s\n", orNA(s.Day), orNA(s.StartTime), orNA(s.EndTime))
		fmt.Fprintf(&b, "  %s\n", orNA(location(s.Venue, s.Room)))
		if len(s.Speakers) > 0 {
			fmt.Fprintf(&b, "  Speakers: %s\n", strings.Join(s.Speakers, ", "))
		}
		fmt.Fprintf(&b, "  Level: %d - %s | Type: %s\n", s.Level, orNA(s.LevelName), orNA(s.Type))
		fmt.Fprintf(&b, "  %s\n", truncate(s.Abstract, 200))
		b.WriteString("---\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// SessionDetails renders the full record for one session.
func SessionDetails(s confplan.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n\n", orNA(s.ShortID), orNA(s.Title))

	fmt.Fprintf(&b, "Schedule:\n  Day: %s\n  Time: %s - %s\n\n", orNA(s.Day), orNA(s.StartTime), orNA(s.EndTime))
	fmt.Fprintf(&b, "Location:\n  Venue: %s\n  Room: %s\n  Capacity: %d seats\n\n", orNA(s.Venue), orNA(s.Room), s.SeatCapacity)

	b.WriteString("Speakers:\n")
	if len(s.SpeakerProfiles) == 0 {
		b.WriteString("  None listed\n")
	}
	for _, sp := range s.SpeakerProfiles {
		fmt.Fprintf(&b, "  - %s (%s)\n", orNA(sp.Name), orNA(sp.Company))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Session info:\n  Level: %d - %s\n  Type: %s\n  Services: %s\n  Topics: %s\n\n",
		s.Level, orNA(s.LevelName), orNA(s.Type), listOrNone(s.Services), listOrNone(s.Topics))
	fmt.Fprintf(&b, "Tags:\n  Areas of interest: %s\n  Target roles: %s\n  Features: %s\n\n",
		listOrNone(s.Areas), listOrNone(s.Roles), listOrNone(s.Features))

	abstract := s.Abstract
	if abstract == "" {
		abstract = "No abstract available"
	}
	fmt.Fprintf(&b, "Abstract:\n%s\n\n", abstract)
	fmt.Fprintf(&b, "Session ID: %s\nLast modified: %s", orNA(s.ID), orNA(s.LastModified))
	return b.String()
}

// Filters renders every facet with its distinct values. Long facets are
// capped at ten entries each.
func Filters(f planner.Filters) string {
	var b strings.Builder
	facet := func(name string, values []string) {
		if len(values) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s:\n", name)
		shown := values
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, v := range shown {
			fmt.Fprintf(&b, "  - %s\n", v)
		}
		if len(values) > 10 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(values)-10)
		}
		b.WriteString("\n")
	}

	facet("Days", f.Days)
	facet("Venues", f.Venues)
	facet("Levels", f.Levels)
	facet("Services", f.Services)
	facet("Topics", f.Topics)
	facet("Types", f.Types)
	facet("Areas of interest", f.Areas)
	facet("Roles", f.Roles)
	facet("Features", f.Features)
	return strings.TrimRight(b.String(), "\n")
}

// FilterValues renders the full value list of one facet.
func FilterValues(name string, values []string) string {
	if len(values) == 0 {
		return fmt.Sprintf("No values available for %s.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available %s:\n", name)
	for _, v := range values {
		fmt.Fprintf(&b, "  - %s\n", v)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Schedule renders a day's sessions grouped under start-time headers. The
// sessions are expected pre-sorted.
func Schedule(day, venue string, sessions []confplan.Session) string {
	suffix := ""
	if venue != "" {
		suffix = fmt.Sprintf(" at %s", venue)
	}
	if len(sessions) == 0 {
		return fmt.Sprintf("No sessions found for %s%s", day, suffix)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Schedule for %s%s\n", day, suffix)
	fmt.Fprintf(&b, "Found %d sessions\n", len(sessions))

	current := ""
	for _, s := range sessions {
		if s.StartTime != current {
			current = s.StartTime
			fmt.Fprintf(&b, "\n## %s\n", current)
		}
		fmt.Fprintf(&b, "%s - %s\n", orNA(s.ShortID), orNA(s.Title))
		fmt.Fprintf(&b, "  %s | Level %d", orNA(location(s.Venue, s.Room)), s.Level)
		if len(s.Speakers) > 0 {
			fmt.Fprintf(&b, " | %s", strings.Join(s.Speakers, ", "))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FeedItems renders stored update-feed entries.
func FeedItems(items []confplan.FeedItem) string {
	if len(items) == 0 {
		return "No feed updates stored. Run a feed sync first."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Latest updates (%d items)\n\n", len(items))
	for _, it := range items {
		fmt.Fprintf(&b, "%s\n", it.Title)
		if it.Category != "" {
			fmt.Fprintf(&b, "  Category: %s\n", it.Category)
		}
		if it.PubDate != "" {
			fmt.Fprintf(&b, "  Published: %s\n", it.PubDate)
		}
		if it.Description != "" {
			fmt.Fprintf(&b, "  %s\n", truncate(it.Description, 300))
		}
		if it.Link != "" {
			fmt.Fprintf(&b, "  %s\n", it.Link)
		}
		b.WriteString("---\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// AgendaEvents renders scraped agenda entries grouped by date.
func AgendaEvents(events []confplan.AgendaEvent) string {
	if len(events) == 0 {
		return "No agenda events stored. Run an agenda sync first."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Agenda (%d events)\n", len(events))

	currentDate := ""
	for _, ev := range events {
		if ev.Date != currentDate {
			currentDate = ev.Date
			fmt.Fprintf(&b, "\n## %s\n", currentDate)
		}
		fmt.Fprintf(&b, "%s - %s [%s]\n", ev.Time, ev.Title, ev.Type)
		if ev.Location != "" {
			fmt.Fprintf(&b, "  Location: %s\n", ev.Location)
		}
		if ev.Duration != "" {
			fmt.Fprintf(&b, "  Duration: %s\n", ev.Duration)
		}
		if ev.Description != "" {
			fmt.Fprintf(&b, "  %s\n", truncate(ev.Description, 200))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FeedSynced renders the outcome of one feed sync.
func FeedSynced(out syncer.Outcome) string {
	var b strings.Builder
	b.WriteString("Feed sync complete\n\n")
	if out.FeedTitle != "" {
		fmt.Fprintf(&b, "Feed: %s\n", out.FeedTitle)
	}
	if out.LastBuildDate != "" {
		fmt.Fprintf(&b, "Last build: %s\n", out.LastBuildDate)
	}
	fmt.Fprintf(&b, "Items processed: %d\nNew items: %d", out.Counts.Processed, out.Counts.New)
	return b.String()
}

// AgendaSynced renders the outcome of one agenda sync.
func AgendaSynced(out syncer.Outcome) string {
	return fmt.Sprintf("Agenda sync complete\n\nEvents stored: %d", out.Counts.Processed)
}

// AllSynced renders the per-source lines of a combined sync.
func AllSynced(lines []string) string {
	var b strings.Builder
	b.WriteString("Full sync finished\n\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "  - %s\n", line)
	}
	return strings.TrimRight(b.String(), "\n")
}

// SyncHistory renders ledger rows, most recent first.
func SyncHistory(records []confplan.SyncRecord) string {
	if len(records) == 0 {
		return "No sync history recorded yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sync history (%d entries)\n\n", len(records))
	for _, rec := range records {
		fmt.Fprintf(&b, "[%s] %s/%s: %s", rec.Timestamp, rec.Source, rec.Kind, rec.Status)
		if rec.Status == confplan.StatusSuccess {
			fmt.Fprintf(&b, " (processed %d, new %d, updated %d)", rec.Processed, rec.New, rec.Updated)
		} else if rec.ErrorMessage != "" {
			fmt.Fprintf(&b, ": %s", rec.ErrorMessage)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// PersonalEventAdded confirms a stored personal event.
func PersonalEventAdded(ev confplan.PersonalEvent) string {
	return fmt.Sprintf("Personal event added\n\nTitle: %s\nID: %d\nFrom: %s\nTo: %s\nLocation: %s\nType: %s",
		ev.Title, ev.ID, ev.StartDateTime, ev.EndDateTime, orNone(ev.Location), ev.Type)
}

// PersonalEvents renders the caller's own schedule entries.
func PersonalEvents(events []confplan.PersonalEvent) string {
	if len(events) == 0 {
		return "No personal events found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Personal events (%d)\n\n", len(events))
	for _, ev := range events {
		fmt.Fprintf(&b, "%s (ID: %d)\n", ev.Title, ev.ID)
		fmt.Fprintf(&b, "  %s - %s\n", ev.StartDateTime, ev.EndDateTime)
		if ev.Location != "" {
			fmt.Fprintf(&b, "  Location: %s\n", ev.Location)
		}
		fmt.Fprintf(&b, "  Type: %s\n", ev.Type)
		if ev.Notes != "" {
			fmt.Fprintf(&b, "  Notes: %s\n", ev.Notes)
		}
		b.WriteString("---\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// PersonalEventDeleted confirms a removal.
func PersonalEventDeleted(title string) string {
	return fmt.Sprintf("Personal event %q deleted.", title)
}

// FavoriteAdded confirms a new favorite entry.
func FavoriteAdded(entry confplan.FavoriteEntry) string {
	return fmt.Sprintf("Session added to favorites\n\nList: %s\nSession: %s - %s\nPriority: %d\nNotes: %s",
		entry.ListName, entry.SessionShortID, entry.SessionTitle, entry.Priority, orNone(entry.Notes))
}

// Favorites renders favorite entries, grouped by list when showing all.
func Favorites(listName string, favorites []confplan.FavoriteSession) string {
	all := listName == "" || listName == "all"
	if len(favorites) == 0 {
		if all {
			return "No favorite sessions found."
		}
		return fmt.Sprintf("No favorite sessions found in %q.", listName)
	}

	var b strings.Builder
	if all {
		fmt.Fprintf(&b, "All favorite sessions (%d)\n", len(favorites))
	} else {
		fmt.Fprintf(&b, "Favorite sessions - %s (%d)\n", listName, len(favorites))
	}

	currentList := ""
	for _, fav := range favorites {
		if all && fav.ListName != currentList {
			currentList = fav.ListName
			fmt.Fprintf(&b, "\n## %s\n", currentList)
		}
		fmt.Fprintf(&b, "%s - %s (priority %d)\n", fav.SessionShortID, fav.SessionTitle, fav.Priority)
		if fav.SessionDay != nil {
			fmt.Fprintf(&b, "  %s at %s-%s\n", *fav.SessionDay, clock(fav.SessionStart), clock(fav.SessionEnd))
		}
		if fav.SessionVenue != nil {
			room := ""
			if fav.SessionRoom != nil {
				room = *fav.SessionRoom
			}
			fmt.Fprintf(&b, "  %s\n", location(*fav.SessionVenue, room))
		}
		if fav.Notes != "" {
			fmt.Fprintf(&b, "  Notes: %s\n", fav.Notes)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FavoriteRemoved confirms a removal.
func FavoriteRemoved(title, listName string) string {
	return fmt.Sprintf("Session %q removed from %q.", title, listName)
}

// FavoriteListCreated confirms a new list.
func FavoriteListCreated(name, description string) string {
	return fmt.Sprintf("Favorite list created\n\nName: %s\nDescription: %s", name, orNone(description))
}

// Exported confirms a calendar export.
func Exported(path string, count int, listName string, includePersonal bool) string {
	personal := "excluded"
	if includePersonal {
		personal = "included"
	}
	return fmt.Sprintf("Calendar export finished\n\nFile: %s\nEvents exported: %d\nList: %s\nPersonal events: %s",
		path, count, listName, personal)
}

// clock extracts HH:MM out of a stored timestamp, when it is long enough.
func clock(ts *string) string {
	if ts == nil || len(*ts) < 16 {
		return "N/A"
	}
	return (*ts)[11:16]
}

func location(venue, room string) string {
	switch {
	case venue != "" && room != "":
		return venue + " - " + room
	case venue != "":
		return venue
	}
	return room
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func listOrNone(values []string) string {
	if len(values) == 0 {
		return "None specified"
	}
	return strings.Join(values, ", ")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// Package ical renders favorite sessions and personal events into an iCal
// file that calendar clients can import.
package ical

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/confplan/confplan/internal/confplan"
)

const personalLayout = "2006-01-02 15:04"

type Exporter struct {
	dir string
}

// New returns an exporter that writes .ics files under dir.
func New(dir string) Exporter {
	return Exporter{dir: dir}
}

// Export writes one calendar containing the given favorites and personal
// events. Rows whose timestamps are missing or unparseable are logged and
// skipped; they never fail the export. It returns the written path and how
// many events made it in.
func (e Exporter) Export(favorites []confplan.FavoriteSession, personal []confplan.PersonalEvent, listName, filename string) (string, int, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//confplan//EN")
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName(fmt.Sprintf("Conference schedule - %s", listName))
	cal.SetXWRCalDesc("Schedule exported by confplan")

	added := 0

	for _, fav := range favorites {
		start, end, ok := sessionTimes(fav)
		if !ok {
			slog.Warn("skipping favorite without usable times", "session", fav.SessionShortID)
			continue
		}

		ev := cal.AddEvent(eventUID("session-" + fav.SessionID))
		ev.SetSummary(fmt.Sprintf("%s - %s", fav.SessionShortID, fav.SessionTitle))
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetLocation(sessionLocation(fav))

		var desc []string
		if fav.Abstract != nil && *fav.Abstract != "" {
			desc = append(desc, *fav.Abstract)
		}
		if fav.Notes != "" {
			desc = append(desc, fmt.Sprintf("Notes: %s", fav.Notes))
		}
		if fav.Speakers != nil && len(*fav.Speakers) > 0 {
			desc = append(desc, fmt.Sprintf("Speakers: %s", strings.Join(*fav.Speakers, ", ")))
		}
		if len(desc) > 0 {
			ev.SetDescription(strings.Join(desc, "\n\n"))
		}
		ev.SetProperty(ical.ComponentPropertyCategories, fmt.Sprintf("List-%s,Priority-%d", fav.ListName, fav.Priority))

		added++
	}

	for _, pe := range personal {
		start, err := time.Parse(personalLayout, pe.StartDateTime)
		if err != nil {
			slog.Warn("skipping personal event with bad start", "id", pe.ID, "error", err)
			continue
		}
		end, err := time.Parse(personalLayout, pe.EndDateTime)
		if err != nil {
			slog.Warn("skipping personal event with bad end", "id", pe.ID, "error", err)
			continue
		}

		ev := cal.AddEvent(eventUID(fmt.Sprintf("personal-%d", pe.ID)))
		ev.SetSummary(pe.Title)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		if pe.Location != "" {
			ev.SetLocation(pe.Location)
		}

		var desc []string
		if pe.Description != "" {
			desc = append(desc, pe.Description)
		}
		if pe.Notes != "" {
			desc = append(desc, fmt.Sprintf("Notes: %s", pe.Notes))
		}
		if len(desc) > 0 {
			ev.SetDescription(strings.Join(desc, "\n\n"))
		}
		ev.SetProperty(ical.ComponentPropertyCategories, fmt.Sprintf("Personal,%s", pe.Type))

		added++
	}

	path := filepath.Join(e.dir, filename+".ics")
	if err := os.WriteFile(path, []byte(cal.Serialize()), 0o644); err != nil {
		return "", 0, fmt.Errorf("error writing calendar file: %s", err)
	}

	return path, added, nil
}

// eventUID derives a stable UID from the entity key, so re-exports update
// events in place instead of duplicating them.
func eventUID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String() + "@confplan"
}

func sessionTimes(fav confplan.FavoriteSession) (time.Time, time.Time, bool) {
	if fav.SessionStart == nil || fav.SessionEnd == nil {
		return time.Time{}, time.Time{}, false
	}
	start, err := parseSessionTime(*fav.SessionStart)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := parseSessionTime(*fav.SessionEnd)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// parseSessionTime accepts the catalog's timestamp with or without a zone.
func parseSessionTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}

func sessionLocation(fav confplan.FavoriteSession) string {
	venue := ""
	if fav.SessionVenue != nil {
		venue = *fav.SessionVenue
	}
	room := ""
	if fav.SessionRoom != nil {
		room = *fav.SessionRoom
	}
	switch {
	case venue != "" && room != "":
		return venue + " - " + room
	case venue != "":
		return venue
	case room != "":
		return room
	}
	return "TBD"
}

package ical

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confplan/confplan/internal/confplan"
)

func strPtr(s string) *string { return &s }

func TestExport(t *testing.T) {
	dir := t.TempDir()

	speakers := confplan.StringList{"Dana Smith"}
	favorites := []confplan.FavoriteSession{
		{
			FavoriteEntry: confplan.FavoriteEntry{
				ListName:       "plan_a",
				SessionID:      "id-1",
				SessionShortID: "SVS201",
				SessionTitle:   "Serverless patterns",
				Notes:          "front row",
				Priority:       1,
			},
			SessionStart: strPtr("2025-12-01T09:00:00"),
			SessionEnd:   strPtr("2025-12-01T10:00:00"),
			SessionVenue: strPtr("Venetian"),
			SessionRoom:  strPtr("Hall B"),
			Abstract:     strPtr("Event-driven architectures."),
			Speakers:     &speakers,
		},
		{
			// No stored session side: skipped, not fatal.
			FavoriteEntry: confplan.FavoriteEntry{
				ListName:     "plan_a",
				SessionID:    "gone-1",
				SessionTitle: "Removed from catalog",
			},
		},
	}
	personal := []confplan.PersonalEvent{
		{
			ID:            7,
			Title:         "Partner dinner",
			StartDateTime: "2025-12-02 19:00",
			EndDateTime:   "2025-12-02 21:00",
			Location:      "Wynn",
			Type:          "meal",
		},
		{
			// Unparseable start: skipped.
			ID:            8,
			Title:         "Broken",
			StartDateTime: "whenever",
			EndDateTime:   "2025-12-02 21:00",
		},
	}

	path, count, err := New(dir).Export(favorites, personal, "plan_a", "test_schedule")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, filepath.Join(dir, "test_schedule.ics"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "BEGIN:VCALENDAR")
	assert.Contains(t, content, "SVS201 - Serverless patterns")
	assert.Contains(t, content, "Partner dinner")
	assert.Contains(t, content, eventUID("session-id-1"))
	assert.Contains(t, content, eventUID("personal-7"))
	assert.NotContains(t, content, "Removed from catalog")
	assert.NotContains(t, content, "Broken")
}

func TestEventUID_Deterministic(t *testing.T) {
	// Re-exports must hit the same UID so calendars update in place.
	assert.Equal(t, eventUID("session-id-1"), eventUID("session-id-1"))
	assert.NotEqual(t, eventUID("session-id-1"), eventUID("session-id-2"))
}

func TestSessionLocation(t *testing.T) {
	tests := []struct {
		name     string
		venue    *string
		room     *string
		expected string
	}{
		{"both", strPtr("Venetian"), strPtr("Hall B"), "Venetian - Hall B"},
		{"venue only", strPtr("Venetian"), nil, "Venetian"},
		{"room only", nil, strPtr("Hall B"), "Hall B"},
		{"neither", nil, nil, "TBD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sessionLocation(confplan.FavoriteSession{
				SessionVenue: tt.venue,
				SessionRoom:  tt.room,
			})
			assert.Equal(t, tt.expected, got)
		})
	}
}

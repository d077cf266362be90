package planner

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/confplan/confplan/internal/confplan"
	"github.com/confplan/confplan/internal/migrations"
	"github.com/confplan/confplan/internal/sqlite"
)

// stubCatalog serves a fixed catalog without any fetching.
type stubCatalog struct {
	sessions []confplan.Session
}

func (s stubCatalog) Get(ctx context.Context, force bool) ([]confplan.Session, error) {
	return s.sessions, nil
}

func testCatalog() []confplan.Session {
	return []confplan.Session{
		{
			ID: "id-1", ShortID: "SVS201", Title: "Serverless patterns",
			Abstract: "Event-driven architectures with Lambda.",
			Day:      "Monday", Venue: "Venetian", Level: 200, Type: "Breakout Session",
			StartTime: "10:00 AM", Services: confplan.StringList{"Lambda"},
			Speakers: confplan.StringList{"Dana Smith"},
		},
		{
			ID: "id-2", ShortID: "DAT301", Title: "Scaling relational databases",
			Abstract: "Sharding strategies.",
			Day:      "Monday", Venue: "MGM Grand", Level: 300, Type: "Chalk Talk",
			StartTime: "9:00 AM", Topics: confplan.StringList{"Databases"},
		},
		{
			ID: "id-3", ShortID: "SVS202", Title: "Step Functions deep dive",
			Day: "Tuesday", Venue: "Venetian", Level: 200, Type: "Breakout Session",
			StartTime: "11:00 AM", Services: confplan.StringList{"Step Functions"},
		},
	}
}

func newTestPlanner(t *testing.T) *Planner {
	t.Helper()

	dbx, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	dbx.SetMaxOpenConns(1)
	t.Cleanup(func() { dbx.Close() })
	require.NoError(t, migrations.Run(dbx))

	return New(sqlite.New(dbx), stubCatalog{sessions: testCatalog()})
}

func TestSearchSessions(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		query    SearchQuery
		expected []string // short ids
	}{
		{
			name:     "no filters returns everything",
			query:    SearchQuery{},
			expected: []string{"SVS201", "DAT301", "SVS202"},
		},
		{
			name:     "day is an exact case-insensitive match",
			query:    SearchQuery{Day: "monday"},
			expected: []string{"SVS201", "DAT301"},
		},
		{
			name:     "venue is a substring match",
			query:    SearchQuery{Venue: "venetian"},
			expected: []string{"SVS201", "SVS202"},
		},
		{
			name:     "level matches exactly",
			query:    SearchQuery{Level: 300},
			expected: []string{"DAT301"},
		},
		{
			name:     "service matches within the list",
			query:    SearchQuery{Service: "lambda"},
			expected: []string{"SVS201"},
		},
		{
			name:     "text query spans title, abstract, and speakers",
			query:    SearchQuery{Query: "sharding"},
			expected: []string{"DAT301"},
		},
		{
			name:     "speaker names are searchable",
			query:    SearchQuery{Query: "dana"},
			expected: []string{"SVS201"},
		},
		{
			name:     "filters combine",
			query:    SearchQuery{Day: "Monday", Type: "breakout"},
			expected: []string{"SVS201"},
		},
		{
			name:     "limit caps results",
			query:    SearchQuery{Limit: 1},
			expected: []string{"SVS201"},
		},
		{
			name:     "no match",
			query:    SearchQuery{Query: "kubernetes"},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := p.SearchSessions(ctx, tt.query)
			require.NoError(t, err)

			var shortIDs []string
			for _, s := range results {
				shortIDs = append(shortIDs, s.ShortID)
			}
			assert.Equal(t, tt.expected, shortIDs)
		})
	}
}

func TestSessionDetails(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()

	// Both identifier forms resolve.
	s, err := p.SessionDetails(ctx, "id-2")
	require.NoError(t, err)
	assert.Equal(t, "DAT301", s.ShortID)

	s, err = p.SessionDetails(ctx, "DAT301")
	require.NoError(t, err)
	assert.Equal(t, "id-2", s.ID)

	_, err = p.SessionDetails(ctx, "nope")
	assert.ErrorIs(t, err, confplan.ErrNotFound)
}

func TestFilters(t *testing.T) {
	p := newTestPlanner(t)

	f, err := p.Filters(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Monday", "Tuesday"}, f.Days)
	assert.Equal(t, []string{"MGM Grand", "Venetian"}, f.Venues)
	assert.Equal(t, []string{"Lambda", "Step Functions"}, f.Services)
	assert.Equal(t, []string{"Breakout Session", "Chalk Talk"}, f.Types)
}

func TestSchedule_SortsByStartTime(t *testing.T) {
	p := newTestPlanner(t)

	sessions, err := p.Schedule(context.Background(), "Monday", "")
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "DAT301", sessions[0].ShortID)
	assert.Equal(t, "SVS201", sessions[1].ShortID)
}

func TestSchedule_ClockLabelsOrderChronologically(t *testing.T) {
	// 12-hour labels must not be compared as strings: "1:00 PM" follows
	// "10:00 AM", and "9:00 AM" precedes both.
	p := New(sqlite.Repo{}, stubCatalog{sessions: []confplan.Session{
		{ID: "a", ShortID: "AFT401", Day: "Monday", StartTime: "1:00 PM"},
		{ID: "b", ShortID: "MID301", Day: "Monday", StartTime: "10:00 AM"},
		{ID: "c", ShortID: "MRN201", Day: "Monday", StartTime: "9:00 AM"},
	}})

	sessions, err := p.Schedule(context.Background(), "Monday", "")
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	assert.Equal(t, "MRN201", sessions[0].ShortID)
	assert.Equal(t, "MID301", sessions[1].ShortID)
	assert.Equal(t, "AFT401", sessions[2].ShortID)
}

func TestAddFavorite(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()

	// Added by short id, stored with both identifiers denormalized.
	entry, err := p.AddFavorite(ctx, "SVS201", "plan_a", "must see", 0)
	require.NoError(t, err)
	assert.Equal(t, "id-1", entry.SessionID)
	assert.Equal(t, "Serverless patterns", entry.SessionTitle)
	assert.Equal(t, 1, entry.Priority)

	_, err = p.AddFavorite(ctx, "id-1", "plan_a", "", 1)
	assert.ErrorIs(t, err, confplan.ErrConflict)

	_, err = p.AddFavorite(ctx, "missing", "plan_a", "", 1)
	assert.ErrorIs(t, err, confplan.ErrNotFound)

	favorites, err := p.Favorites(ctx, "all")
	require.NoError(t, err)
	require.Len(t, favorites, 1)

	title, err := p.RemoveFavorite(ctx, "SVS201", "plan_a")
	require.NoError(t, err)
	assert.Equal(t, "Serverless patterns", title)
}

func TestAddPersonalEvent_Validation(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		event confplan.PersonalEvent
	}{
		{
			name: "bad start format",
			event: confplan.PersonalEvent{
				Title: "Dinner", StartDateTime: "tonight", EndDateTime: "2025-12-02 21:00",
			},
		},
		{
			name: "date only",
			event: confplan.PersonalEvent{
				Title: "Dinner", StartDateTime: "2025-12-02", EndDateTime: "2025-12-02 21:00",
			},
		},
		{
			name: "missing title",
			event: confplan.PersonalEvent{
				StartDateTime: "2025-12-02 19:00", EndDateTime: "2025-12-02 21:00",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.AddPersonalEvent(ctx, tt.event)
			assert.ErrorIs(t, err, confplan.ErrInvalid)
		})
	}

	// Nothing invalid was persisted.
	events, err := p.PersonalEvents(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPersonalEvents_DayFilter(t *testing.T) {
	p := newTestPlanner(t)
	ctx := context.Background()

	_, err := p.AddPersonalEvent(ctx, confplan.PersonalEvent{
		Title: "Team dinner", StartDateTime: "2025-12-02 19:00", EndDateTime: "2025-12-02 21:00",
	})
	require.NoError(t, err)
	_, err = p.AddPersonalEvent(ctx, confplan.PersonalEvent{
		Title: "Morning run", StartDateTime: "2025-12-03 07:00", EndDateTime: "2025-12-03 08:00",
	})
	require.NoError(t, err)

	events, err := p.PersonalEvents(ctx, "Tuesday", "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Team dinner", events[0].Title)

	// An unknown day name applies no date filter.
	events, err = p.PersonalEvents(ctx, "someday", "")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

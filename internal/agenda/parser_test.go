package agenda

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAgendaPage = `<!DOCTYPE html>
<html>
<body>
  <h2>Day 1 - Monday, December 1</h2>
  <ul>
    <li>
      <h3>Opening Keynote</h3>
      <p>9:00 AM</p>
      <p>Venetian Theatre</p>
      <p>9:00 AM &#8211; 11:00 AM</p>
      <p>Opening remarks</p>
      <a href="#">Learn more about this event</a>
    </li>
    <li>
      <p>Registration desk hours</p>
    </li>
  </ul>
  <h2>Day 2 - Tuesday, December 2</h2>
  <ul>
    <li>Builder breakfast<br/>7:00 AM<br/>MGM Grand</li>
  </ul>
</body>
</html>`

func TestParse(t *testing.T) {
	events, err := Parse(strings.NewReader(testAgendaPage))
	require.NoError(t, err)

	// The registration entry has no time token and is dropped.
	require.Len(t, events, 2)

	assert.Equal(t, "Day 1 - Monday, December 1", events[0].Date)
	assert.Equal(t, "9:00 AM", events[0].Time)
	assert.Equal(t, "Opening Keynote", events[0].Title)
	assert.Equal(t, "Opening remarks", events[0].Description)
	assert.Equal(t, "Venetian Theatre", events[0].Location)
	assert.Equal(t, "9:00 AM – 11:00 AM", events[0].Duration)
	assert.Equal(t, "Keynote", events[0].Type)

	assert.Equal(t, "Day 2 - Tuesday, December 2", events[1].Date)
	assert.Equal(t, "7:00 AM", events[1].Time)
	assert.Equal(t, "Builder breakfast", events[1].Title)
	assert.Equal(t, "MGM Grand", events[1].Location)
	assert.Equal(t, "Meal", events[1].Type)
}

func TestParse_NoDayHeading(t *testing.T) {
	page := `<html><body><li>Standalone event<br/>2:00 PM</li></body></html>`

	events, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Empty(t, events[0].Date)
	assert.Equal(t, "Standalone event", events[0].Title)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Opening Keynote", "Keynote"},
		{"Breakout Session 101", "Session"},
		{"Expo Hall opens", "Expo"},
		{"Welcome Reception", "Social"},
		{"Replay Party", "Social"},
		{"Community breakfast", "Meal"},
		{"Networking lunch", "Meal"},
		{"Hiking excursion", "General"},
		// Only the first matching rule applies.
		{"Keynote watch party", "Keynote"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, classify(tt.title))
		})
	}
}

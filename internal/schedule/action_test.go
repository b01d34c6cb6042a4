package schedule

import (
	"testing"
	"time"

	"pigeon/internal/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_EvaluatesInTargetZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)

	book := NewBook(tokyo, []Action{{
		Name:       "evening",
		Expression: MustParse("30 21 * * *"),
		Channel:    "C1",
		Message:    messaging.Text("good evening"),
	}})

	// 12:30 UTC is 21:30 in Tokyo.
	due := book.Due(time.Date(2024, time.May, 10, 12, 30, 15, 0, time.UTC))
	require.Len(t, due, 1)
	assert.Equal(t, "evening", due[0].Name)

	// 21:30 UTC is 06:30 the next day in Tokyo.
	assert.Empty(t, book.Due(time.Date(2024, time.May, 10, 21, 30, 0, 0, time.UTC)))
}

func TestBook_FiresOncePerMinute(t *testing.T) {
	book := NewBook(time.UTC, []Action{
		{Name: "every-minute", Expression: MustParse("* * * * *"), Channel: "C1"},
		{Name: "top-of-hour", Expression: MustParse("0 * * * *"), Channel: "C2"},
	})

	start := time.Date(2024, time.May, 10, 9, 0, 2, 0, time.UTC)
	assert.Len(t, book.Due(start), 2)
	assert.Empty(t, book.Due(start.Add(40*time.Second)), "second tick in the same minute")

	next := book.Due(start.Add(time.Minute))
	require.Len(t, next, 1)
	assert.Equal(t, "every-minute", next[0].Name)
}

func TestBook_DefaultsToUTC(t *testing.T) {
	book := NewBook(nil, nil)
	assert.Equal(t, time.UTC, book.Location())
	assert.Empty(t, book.Due(time.Now()))
	assert.Empty(t, book.Actions())
}

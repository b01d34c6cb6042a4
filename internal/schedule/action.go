package schedule

import (
	"time"

	"pigeon/internal/messaging"
)

// Action posts Message to Channel whenever Expression matches.
type Action struct {
	Name       string
	Expression *Expression
	Channel    string
	Message    messaging.Message
}

// Book holds the scheduled actions of one handler and remembers which civil
// minute each action last fired in. It is not safe for concurrent use; the
// dispatcher only ever calls it from one goroutine.
type Book struct {
	location *time.Location
	actions  []Action
	fired    []time.Time
}

// NewBook evaluates actions in location. A nil location means UTC.
func NewBook(location *time.Location, actions []Action) *Book {
	if location == nil {
		location = time.UTC
	}
	return &Book{
		location: location,
		actions:  actions,
		fired:    make([]time.Time, len(actions)),
	}
}

// Location returns the time zone schedules are evaluated in.
func (b *Book) Location() *time.Location {
	return b.location
}

// Actions returns the registered actions.
func (b *Book) Actions() []Action {
	return b.actions
}

// Due returns the actions whose expression matches now in the book's time
// zone. An action is returned at most once per civil minute, so two ticks
// landing in the same minute do not fire it twice.
func (b *Book) Due(now time.Time) []Action {
	minute := now.In(b.location).Truncate(time.Minute)

	var due []Action
	for i, action := range b.actions {
		if !action.Expression.Matches(minute) {
			continue
		}
		if b.fired[i].Equal(minute) {
			continue
		}
		b.fired[i] = minute
		due = append(due, action)
	}
	return due
}

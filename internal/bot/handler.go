package bot

import "time"

// EventHandler receives non-interactive events.
type EventHandler interface {
	// MemberJoinedChannel is called when user joins channel. inviter is empty
	// when the user joined on their own.
	MemberJoinedChannel(ctx Context, channel, user, inviter string) error
	// Callback is called on every timer tick. at is when the tick fired,
	// which is earlier than now when the dispatch loop is busy.
	Callback(ctx Context, at time.Time) error
}

// NopHandler implements EventHandler and ignores every event. Embed it to
// implement only the methods you need.
type NopHandler struct{}

func (NopHandler) MemberJoinedChannel(Context, string, string, string) error { return nil }

func (NopHandler) Callback(Context, time.Time) error { return nil }

// CommandFunc handles a slash command. text is everything typed after the
// command name.
type CommandFunc func(ctx InteractionContext, text, user, channel string) error

// ActionFunc handles a click on an interactive element whose value is the
// action name.
type ActionFunc func(ctx InteractionContext, user, username, displayName, channel string) error

// SlashCommand binds a command name, without the leading "/", to a handler.
type SlashCommand struct {
	Name    string
	Handler CommandFunc
}

// MessageAction binds an action value to a handler.
type MessageAction struct {
	Name    string
	Handler ActionFunc
}

package bot

import (
	"context"

	"pigeon/internal/messaging"
)

// Context is passed to every handler call. It carries the dispatch context
// and a messaging client authenticated with the bot token.
type Context struct {
	context.Context
	Messenger *messaging.Client
}

// InteractionContext is passed to slash command and message action handlers.
// TriggerID can be used to open a modal in response to the interaction.
type InteractionContext struct {
	Context
	TriggerID string
}

// PostMessage posts msg to a channel.
func (c Context) PostMessage(channel string, msg messaging.Message) error {
	return c.Messenger.PostMessage(c, channel, msg)
}

// PostEphemeral posts msg to a channel, visible only to user.
func (c Context) PostEphemeral(channel, user string, msg messaging.Message) error {
	return c.Messenger.PostEphemeral(c, channel, user, msg)
}

// SendDM sends msg as a direct message to user.
func (c Context) SendDM(user string, msg messaging.Message) error {
	return c.Messenger.SendDM(c, user, msg)
}

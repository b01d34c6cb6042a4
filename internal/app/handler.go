package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pigeon/internal/bot"
	"pigeon/internal/logger"
	"pigeon/internal/messaging"
	"pigeon/internal/schedule"

	"go.uber.org/zap"
)

// Handler welcomes new channel members, posts scheduled actions when they
// are due and answers a couple of slash commands.
type Handler struct {
	book *schedule.Book
}

func NewHandler(book *schedule.Book) *Handler {
	return &Handler{book: book}
}

func (h *Handler) MemberJoinedChannel(ctx bot.Context, channel, user, _ string) error {
	return ctx.PostMessage(channel, messaging.Text(fmt.Sprintf("Welcome to the channel, <@%s>!", user)))
}

// Callback posts every scheduled action due in the minute the tick fired.
// A failed post does not keep the remaining actions from being posted.
func (h *Handler) Callback(ctx bot.Context, at time.Time) error {
	var errs []error
	for _, action := range h.book.Due(at) {
		if err := ctx.PostMessage(action.Channel, action.Message); err != nil {
			errs = append(errs, fmt.Errorf("scheduled action %s: %w", action.Name, err))
			continue
		}
		logger.GetLogger().Info("scheduled action posted",
			zap.String("action", action.Name),
			zap.String("channel", action.Channel))
	}
	return errors.Join(errs...)
}

// Commands returns the slash commands served by the handler.
func (h *Handler) Commands() []bot.SlashCommand {
	return []bot.SlashCommand{
		{Name: "ping", Handler: h.Ping},
		{Name: "schedule", Handler: h.ListSchedule},
	}
}

// Actions returns the message actions served by the handler.
func (h *Handler) Actions() []bot.MessageAction {
	return []bot.MessageAction{
		{Name: "acknowledge", Handler: h.Acknowledge},
	}
}

func (h *Handler) Ping(ctx bot.InteractionContext, _, user, channel string) error {
	return ctx.PostEphemeral(channel, user, messaging.Text("pong"))
}

// ListSchedule shows the caller which actions are scheduled and when.
func (h *Handler) ListSchedule(ctx bot.InteractionContext, _, user, channel string) error {
	actions := h.book.Actions()
	if len(actions) == 0 {
		return ctx.PostEphemeral(channel, user, messaging.Text("Nothing is scheduled."))
	}

	lines := make([]string, 0, len(actions)+1)
	lines = append(lines, fmt.Sprintf("Scheduled actions (%s):", h.book.Location()))
	for _, action := range actions {
		lines = append(lines, fmt.Sprintf("• `%s` %s in <#%s>", action.Expression, action.Name, action.Channel))
	}
	return ctx.PostEphemeral(channel, user, messaging.Text(strings.Join(lines, "\n")))
}

func (h *Handler) Acknowledge(ctx bot.InteractionContext, user, _, _, channel string) error {
	return ctx.PostMessage(channel, messaging.Text(fmt.Sprintf("<@%s> acknowledged.", user)))
}

package listener

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"pigeon/internal/event"
	"pigeon/internal/logger"
	"pigeon/internal/model"

	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"
)

// Response bodies. Slack only ever sees HTTP 200 with one of these or a
// URL verification challenge.
const (
	BodyInvalidRequest = "Invalid request"
	BodyOK             = "200 OK"
	BodyEmpty          = ""
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// Result is the outcome of classifying one verified request. Event is nil
// when nothing should be published.
type Result struct {
	Body  string
	Event event.Event
}

func invalid(reason string, fields ...zap.Field) Result {
	logger.GetLogger().Debug("invalid request: "+reason, fields...)
	return Result{Body: BodyInvalidRequest}
}

// Classify turns a verified body into at most one event plus the response body.
// Malformed input never panics; it degrades to "Invalid request".
func Classify(body, contentType string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = invalid("parser panic", zap.Any("panic", r))
		}
	}()

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return invalid("unparsable content type", zap.String("content_type", contentType))
	}

	switch mediaType {
	case contentTypeJSON:
		return classifyJSON(body)
	case contentTypeForm:
		return classifyForm(body)
	default:
		return invalid("unsupported content type", zap.String("content_type", mediaType))
	}
}

func classifyJSON(body string) Result {
	var envelope model.SlackEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return invalid("malformed json envelope", zap.Error(err))
	}

	switch envelope.Type {
	case model.TypeURLVerification:
		var verification model.URLVerification
		if err := json.Unmarshal([]byte(body), &verification); err != nil || verification.Challenge == nil {
			return invalid("malformed url verification", zap.Error(err))
		}
		return Result{Body: *verification.Challenge}
	case model.TypeEventCallback:
		return classifyEventCallback(body)
	default:
		return invalid("unknown envelope type", zap.String("type", envelope.Type))
	}
}

func classifyEventCallback(body string) Result {
	// slackevents dereferences the inner event unconditionally, so make sure it exists.
	var raw struct {
		Event json.RawMessage `json:"event"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil || len(raw.Event) == 0 || string(raw.Event) == "null" {
		return invalid("event callback without inner event")
	}

	eventsAPIEvent, err := slackevents.ParseEvent(
		json.RawMessage(body),
		slackevents.OptionNoVerifyToken(),
	)
	if err != nil {
		return invalid("failed to parse slack event", zap.Error(err))
	}

	switch ev := eventsAPIEvent.InnerEvent.Data.(type) {
	case *slackevents.MemberJoinedChannelEvent:
		if ev.User == "" || ev.Channel == "" {
			return invalid("member_joined_channel without user or channel")
		}
		return Result{
			Body: BodyOK,
			Event: event.MemberJoined{
				Delivery: event.NewDelivery(),
				Channel:  ev.Channel,
				User:     ev.User,
				Inviter:  ev.Inviter,
			},
		}
	default:
		return invalid("unsupported event type", zap.String("event_type", eventsAPIEvent.InnerEvent.Type))
	}
}

func classifyForm(body string) Result {
	values, err := url.ParseQuery(body)
	if err != nil {
		return invalid("malformed form body", zap.Error(err))
	}
	envelope := formEnvelope(values)

	if envelope.Command != nil {
		return classifyCommand(values)
	}
	if envelope.Payload != nil {
		return classifyInteraction(*envelope.Payload)
	}
	return Result{Body: BodyEmpty}
}

func formEnvelope(values url.Values) model.FormEnvelope {
	var envelope model.FormEnvelope
	if values.Has("command") {
		command := values.Get("command")
		envelope.Command = &command
	}
	if values.Has("payload") {
		payload := values.Get("payload")
		envelope.Payload = &payload
	}
	return envelope
}

func classifyCommand(values url.Values) Result {
	command := model.SlashCommand{
		Command:     values.Get("command"),
		Text:        values.Get("text"),
		TriggerID:   values.Get("trigger_id"),
		UserID:      values.Get("user_id"),
		ChannelID:   values.Get("channel_id"),
		TeamID:      values.Get("team_id"),
		ResponseURL: values.Get("response_url"),
	}
	// The dispatcher strips the leading "/" unconditionally.
	if !strings.HasPrefix(command.Command, "/") || len(command.Command) < 2 {
		return invalid("slash command without trigger prefix", zap.String("command", command.Command))
	}
	if command.UserID == "" || command.ChannelID == "" {
		return invalid("slash command without user or channel", zap.String("command", command.Command))
	}

	return Result{
		Body: BodyEmpty,
		Event: event.SlashCommandInvoked{
			Delivery:  event.NewDelivery(),
			Command:   command.Command,
			Text:      command.Text,
			User:      command.UserID,
			Channel:   command.ChannelID,
			TriggerID: command.TriggerID,
		},
	}
}

func classifyInteraction(payload string) Result {
	var interaction model.InteractionPayload
	if err := json.Unmarshal([]byte(payload), &interaction); err != nil {
		return invalid("malformed interaction payload", zap.Error(err))
	}

	if interaction.Container.Type != model.ContainerMessage {
		return Result{Body: BodyEmpty}
	}
	if len(interaction.Actions) == 0 {
		logger.GetLogger().Warn("message interaction without actions", zap.String("type", interaction.Type))
		return Result{Body: BodyEmpty}
	}
	if len(interaction.Actions) > 1 {
		logger.GetLogger().Debug(fmt.Sprintf("interaction has %d actions, using the first", len(interaction.Actions)))
	}

	return Result{
		Body: BodyEmpty,
		Event: event.BlockInteraction{
			Delivery:    event.NewDelivery(),
			Action:      interaction.Actions[0].Value,
			TriggerID:   interaction.TriggerID,
			User:        interaction.User.ID,
			Username:    interaction.User.Username,
			DisplayName: interaction.User.Name,
			Channel:     interaction.Channel.ID,
		},
	}
}

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
)

const (
	MethodPostMessage   = "chat.postMessage"
	MethodPostEphemeral = "chat.postEphemeral"
)

// ErrEmptyMessage is returned for a message with neither text nor blocks.
var ErrEmptyMessage = errors.New("message has no text or blocks")

// APIError is an ok=false acknowledgement from the Slack Web API.
type APIError struct {
	Method string
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s failed: %s", e.Method, e.Code)
}

// Message is the content of an outbound post.
type Message struct {
	Text string
	// Blocks is a raw Block Kit JSON array. Text, when also set, is used as the
	// notification fallback.
	Blocks   string
	ThreadTS string
}

// Text returns a plain text message.
func Text(text string) Message {
	return Message{Text: text}
}

// Blocks returns a Block Kit message from a raw JSON array.
func Blocks(blocks string) Message {
	return Message{Blocks: blocks}
}

func (m Message) options() ([]slack.MsgOption, error) {
	if m.Text == "" && m.Blocks == "" {
		return nil, ErrEmptyMessage
	}

	var options []slack.MsgOption
	if m.Text != "" {
		options = append(options, slack.MsgOptionText(m.Text, false))
	}
	if m.Blocks != "" {
		var blocks slack.Blocks
		if err := json.Unmarshal([]byte(m.Blocks), &blocks); err != nil {
			return nil, fmt.Errorf("failed to decode blocks: %w", err)
		}
		options = append(options, slack.MsgOptionBlocks(blocks.BlockSet...))
	}
	if m.ThreadTS != "" {
		options = append(options, slack.MsgOptionTS(m.ThreadTS))
	}
	return options, nil
}

// Client posts messages with the bot token. It keeps no state between calls.
type Client struct {
	api *slack.Client
}

// NewClient creates a client authenticated with token. Options are passed to
// slack.New, e.g. slack.OptionHTTPClient to bound request latency.
func NewClient(token string, options ...slack.Option) *Client {
	return &Client{
		api: slack.New(token, options...),
	}
}

// PostMessage posts msg to a channel.
func (c *Client) PostMessage(ctx context.Context, channelID string, msg Message) error {
	options, err := msg.options()
	if err != nil {
		return err
	}
	if _, _, err := c.api.PostMessageContext(ctx, channelID, options...); err != nil {
		return wrap(MethodPostMessage, err)
	}
	return nil
}

// PostEphemeral posts msg to a channel, visible only to userID.
func (c *Client) PostEphemeral(ctx context.Context, channelID, userID string, msg Message) error {
	options, err := msg.options()
	if err != nil {
		return err
	}
	if _, err := c.api.PostEphemeralContext(ctx, channelID, userID, options...); err != nil {
		return wrap(MethodPostEphemeral, err)
	}
	return nil
}

// SendDM sends msg as a direct message. Slack opens the IM when the user id
// is used as the channel.
func (c *Client) SendDM(ctx context.Context, userID string, msg Message) error {
	return c.PostMessage(ctx, userID, msg)
}

func wrap(method string, err error) error {
	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		return &APIError{Method: method, Code: slackErr.Err}
	}
	return fmt.Errorf("slack %s: %w", method, err)
}

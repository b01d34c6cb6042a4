package model

// Outer envelope types carried in a JSON request's "type" field.
const (
	TypeURLVerification = "url_verification"
	TypeEventCallback   = "event_callback"
)

// ContainerMessage is the only interaction container type that is forwarded.
const ContainerMessage = "message"

// SlackEnvelope is the minimal JSON envelope used to route a request.
type SlackEnvelope struct {
	Type string `json:"type"`
}

// URLVerification is the ownership handshake Slack sends when the request URL
// is configured. Challenge is a pointer so a missing field can be told apart
// from an empty one.
type URLVerification struct {
	Type      string  `json:"type"`
	Challenge *string `json:"challenge"`
}

// FormEnvelope tells slash commands and interaction payloads apart.
type FormEnvelope struct {
	Command *string
	Payload *string
}

// SlashCommand holds the fields of a slash command form post.
type SlashCommand struct {
	Command     string
	Text        string
	TriggerID   string
	UserID      string
	ChannelID   string
	TeamID      string
	ResponseURL string
}

// InteractionPayload is the JSON document posted in the "payload" form field
// for interactive components.
type InteractionPayload struct {
	Type      string               `json:"type"`
	TriggerID string               `json:"trigger_id"`
	User      InteractionUser      `json:"user"`
	Channel   InteractionChannel   `json:"channel"`
	Actions   []InteractionAction  `json:"actions"`
	Container InteractionContainer `json:"container"`
}

// InteractionUser identifies who triggered the interaction.
type InteractionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	TeamID   string `json:"team_id"`
}

// InteractionChannel is the channel the interaction happened in.
type InteractionChannel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InteractionAction is one element the user acted on.
type InteractionAction struct {
	ActionID string `json:"action_id"`
	BlockID  string `json:"block_id"`
	Value    string `json:"value"`
}

// InteractionContainer describes where the interactive element lives.
type InteractionContainer struct {
	Type string `json:"type"`
}

package bot

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"pigeon/internal/event"
	"pigeon/internal/listener"
	"pigeon/internal/messaging"

	"github.com/slack-go/slack"
)

// DefaultTickInterval is how often Callback runs when no interval is set.
const DefaultTickInterval = time.Minute

// ErrMissingField is wrapped by Build for every required field left unset.
var ErrMissingField = errors.New("required field not set")

// Builder collects the bot configuration. Create one with New.
type Builder struct {
	port         int
	handler      EventHandler
	token        string
	secret       string
	commands     []SlashCommand
	actions      []MessageAction
	tickInterval time.Duration
	httpClient   *http.Client
	apiURL       string
}

func New() *Builder {
	return &Builder{}
}

// Port sets the TCP port the webhook listener binds to.
func (b *Builder) Port(port int) *Builder {
	b.port = port
	return b
}

func (b *Builder) EventHandler(handler EventHandler) *Builder {
	b.handler = handler
	return b
}

// Token sets the bot user OAuth token used for outbound API calls.
func (b *Builder) Token(token string) *Builder {
	b.token = token
	return b
}

// SigningSecret sets the secret inbound requests are signed with.
func (b *Builder) SigningSecret(secret string) *Builder {
	b.secret = secret
	return b
}

// SlashCommand registers handler for /name. A later registration of the
// same name replaces an earlier one.
func (b *Builder) SlashCommand(name string, handler CommandFunc) *Builder {
	b.commands = append(b.commands, SlashCommand{Name: name, Handler: handler})
	return b
}

func (b *Builder) SlashCommands(commands ...SlashCommand) *Builder {
	b.commands = append(b.commands, commands...)
	return b
}

// MessageAction registers handler for the action value name. A later
// registration of the same name replaces an earlier one.
func (b *Builder) MessageAction(name string, handler ActionFunc) *Builder {
	b.actions = append(b.actions, MessageAction{Name: name, Handler: handler})
	return b
}

func (b *Builder) MessageActions(actions ...MessageAction) *Builder {
	b.actions = append(b.actions, actions...)
	return b
}

// TickInterval sets how often Callback runs. Defaults to DefaultTickInterval.
func (b *Builder) TickInterval(interval time.Duration) *Builder {
	b.tickInterval = interval
	return b
}

// HTTPClient sets the client used for outbound API calls.
func (b *Builder) HTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// APIURL overrides the Slack Web API base URL. It must end with "/".
func (b *Builder) APIURL(url string) *Builder {
	b.apiURL = url
	return b
}

// Build validates the configuration and returns a Client ready to Run.
// The returned error names every required field that is missing.
func (b *Builder) Build() (*Client, error) {
	var errs []error
	switch {
	case b.port == 0:
		errs = append(errs, missing("port"))
	case b.port < 0 || b.port > 65535:
		errs = append(errs, fmt.Errorf("port %d out of range", b.port))
	}
	if b.handler == nil {
		errs = append(errs, missing("event handler"))
	}
	if b.token == "" {
		errs = append(errs, missing("token"))
	}
	if b.secret == "" {
		errs = append(errs, missing("signing secret"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	commands := make(map[string]CommandFunc, len(b.commands))
	for _, cmd := range b.commands {
		commands[cmd.Name] = cmd.Handler
	}
	actions := make(map[string]ActionFunc, len(b.actions))
	for _, action := range b.actions {
		actions[action.Name] = action.Handler
	}

	var options []slack.Option
	if b.httpClient != nil {
		options = append(options, slack.OptionHTTPClient(b.httpClient))
	}
	if b.apiURL != "" {
		options = append(options, slack.OptionAPIURL(b.apiURL))
	}

	tickInterval := b.tickInterval
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}

	bus := event.NewBus(event.DefaultCapacity)
	l := listener.New(listener.NewVerifier(b.secret), bus)

	return &Client{
		port:         b.port,
		handler:      b.handler,
		commands:     commands,
		actions:      actions,
		messenger:    messaging.NewClient(b.token, options...),
		bus:          bus,
		engine:       l.Engine(),
		tickInterval: tickInterval,
		drainTimeout: defaultDrainTimeout,
		now:          time.Now,
	}, nil
}

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

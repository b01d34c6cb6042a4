package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is one of MemberJoined, SlashCommandInvoked, BlockInteraction or Tick.
// The set is closed: only types in this package implement it.
type Event interface {
	// DeliveryID identifies one delivery of the event for log correlation.
	DeliveryID() string
	// Kind is a short name used in logs.
	Kind() string
	sealed()
}

// Delivery carries the delivery id shared by every event variant.
type Delivery struct {
	ID string
}

// NewDelivery returns a Delivery with a fresh random id.
func NewDelivery() Delivery {
	return Delivery{ID: uuid.NewString()}
}

func (d Delivery) DeliveryID() string { return d.ID }

func (Delivery) sealed() {}

// MemberJoined is published when a user joins a channel the bot is in.
type MemberJoined struct {
	Delivery
	Channel string
	User    string
	Inviter string // empty when the user joined on their own
}

func (MemberJoined) Kind() string { return "member_joined_channel" }

// SlashCommandInvoked is published for every slash command request.
// Command still carries the leading "/".
type SlashCommandInvoked struct {
	Delivery
	Command   string
	Text      string
	User      string
	Channel   string
	TriggerID string
}

func (SlashCommandInvoked) Kind() string { return "slash_command" }

// BlockInteraction is published when a user clicks an interactive element
// in a message. Action holds the value of the first action in the payload;
// any further actions are ignored.
type BlockInteraction struct {
	Delivery
	Action      string
	TriggerID   string
	User        string
	Username    string
	DisplayName string
	Channel     string
}

func (BlockInteraction) Kind() string { return "block_interaction" }

// Tick is injected by the timer, independent of inbound traffic.
type Tick struct {
	Delivery
	At time.Time
}

func (Tick) Kind() string { return "tick" }

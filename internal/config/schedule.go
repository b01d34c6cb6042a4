package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"pigeon/internal/messaging"
	"pigeon/internal/schedule"

	"gopkg.in/yaml.v3"
)

// ScheduleDocument is the YAML file listing scheduled posts.
//
//	actions:
//	  - name: standup
//	    schedule: "0 9 * * 1-5"
//	    channel: C123
//	    text: "Standup time"
type ScheduleDocument struct {
	Actions []ActionSpec `yaml:"actions"`
}

// ActionSpec is one scheduled post. Blocks, when set, is a Block Kit JSON
// array; Text is then used as the notification fallback.
type ActionSpec struct {
	Name     string `yaml:"name"`
	Schedule string `yaml:"schedule"`
	Channel  string `yaml:"channel"`
	Text     string `yaml:"text"`
	Blocks   string `yaml:"blocks"`
	ThreadTS string `yaml:"thread_ts"`
}

// ParseSchedule decodes a schedule document. Every invalid action is
// reported in the returned error. An empty document has no actions.
func ParseSchedule(data []byte) ([]schedule.Action, error) {
	var doc ScheduleDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode schedule document: %w", err)
	}

	var (
		actions []schedule.Action
		errs    []error
		seen    = make(map[string]bool, len(doc.Actions))
	)
	for i, spec := range doc.Actions {
		action, err := spec.action()
		if err == nil && seen[spec.Name] {
			err = errors.New("duplicate name")
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("action %d (%s): %w", i, spec.Name, err))
			continue
		}
		seen[spec.Name] = true
		actions = append(actions, action)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return actions, nil
}

func (s ActionSpec) action() (schedule.Action, error) {
	if s.Name == "" {
		return schedule.Action{}, errors.New("name is required")
	}
	if s.Channel == "" {
		return schedule.Action{}, errors.New("channel is required")
	}
	if s.Text == "" && s.Blocks == "" {
		return schedule.Action{}, errors.New("text or blocks is required")
	}
	if s.Blocks != "" {
		var blocks []json.RawMessage
		if err := json.Unmarshal([]byte(s.Blocks), &blocks); err != nil {
			return schedule.Action{}, fmt.Errorf("blocks must be a JSON array: %w", err)
		}
	}

	expr, err := schedule.Parse(s.Schedule)
	if err != nil {
		return schedule.Action{}, err
	}

	return schedule.Action{
		Name:       s.Name,
		Expression: expr,
		Channel:    s.Channel,
		Message: messaging.Message{
			Text:     s.Text,
			Blocks:   s.Blocks,
			ThreadTS: s.ThreadTS,
		},
	}, nil
}

// Package snapshot defines the JSON-exportable wire shapes of Message and
// Step, and JSON Schema tooling to generate and validate against them, for
// use in golden-output tests. Nothing in the core execution path depends on
// this package.
package snapshot

import (
	"encoding/json"
	"time"

	"github.com/taskolib/taskolib/pkg/message"
	"github.com/taskolib/taskolib/pkg/step"
)

// MessageDoc is the wire shape of one Message.
type MessageDoc struct {
	Type      string  `json:"type" jsonschema:"required,enum=output,enum=sequence_started,enum=sequence_stopped,enum=sequence_stopped_with_error,enum=step_started,enum=step_stopped,enum=step_stopped_with_error"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp" jsonschema:"required"`
	StepIndex *uint16 `json:"step_index,omitempty"`
}

// FromMessage converts a runtime Message into its wire shape.
func FromMessage(m message.Message) MessageDoc {
	return MessageDoc{
		Type:      m.Type.String(),
		Text:      m.Text,
		Timestamp: m.Timestamp.UTC().Format(time.RFC3339Nano),
		StepIndex: m.StepIndex,
	}
}

// StepDoc is the wire shape of one Step, omitting runtime-only fields
// (Running) that have no business in a persisted/exported snapshot.
type StepDoc struct {
	Type      string   `json:"type" jsonschema:"required"`
	Label     string   `json:"label,omitempty"`
	Script    string   `json:"script,omitempty"`
	Whitelist []string `json:"whitelist,omitempty"`
	Disabled  bool     `json:"disabled,omitempty"`
	Indent    uint16   `json:"indent"`
}

// FromStep converts a runtime Step into its wire shape.
func FromStep(s *step.Step) StepDoc {
	return StepDoc{
		Type:      s.Type.String(),
		Label:     s.Label,
		Script:    s.Script,
		Whitelist: s.Whitelist,
		Disabled:  s.Disabled,
		Indent:    s.Indent,
	}
}

// MarshalMessages renders a slice of Messages as the indented JSON array
// golden tests compare against.
func MarshalMessages(msgs []message.Message) ([]byte, error) {
	docs := make([]MessageDoc, len(msgs))
	for i, m := range msgs {
		docs[i] = FromMessage(m)
	}
	return json.MarshalIndent(docs, "", "  ")
}

// MarshalSteps renders a Sequence's steps as the indented JSON array golden
// tests compare against.
func MarshalSteps(steps []*step.Step) ([]byte, error) {
	docs := make([]StepDoc, len(steps))
	for i, s := range steps {
		docs[i] = FromStep(s)
	}
	return json.MarshalIndent(docs, "", "  ")
}

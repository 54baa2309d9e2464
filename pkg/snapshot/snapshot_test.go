package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/taskolib/taskolib/pkg/message"
	"github.com/taskolib/taskolib/pkg/step"
)

func TestMessageDocValidatesAgainstItsSchema(t *testing.T) {
	m := message.New(message.Output, "hello", nil)
	doc := FromMessage(m)
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	schema := GenerateMessageSchema()
	if err := ValidateAgainst(schema, raw); err != nil {
		t.Errorf("expected MessageDoc to validate against its own schema: %v", err)
	}
}

func TestStepDocValidatesAgainstItsSchema(t *testing.T) {
	s := step.New(step.Action).WithScript("1").WithLabel("demo")
	doc := FromStep(s)
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	schema := GenerateStepSchema()
	if err := ValidateAgainst(schema, raw); err != nil {
		t.Errorf("expected StepDoc to validate against its own schema: %v", err)
	}
}

func TestMarshalStepsProducesAnArray(t *testing.T) {
	steps := []*step.Step{
		step.New(step.Action).WithScript("1"),
		step.New(step.End),
	}
	raw, err := MarshalSteps(steps)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var docs []StepDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}
	if docs[1].Type != "end" {
		t.Errorf("got %q, want %q", docs[1].Type, "end")
	}
}

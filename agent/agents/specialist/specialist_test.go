package specialist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	contractx "supportmesh/agent/contract"
	"supportmesh/agent/store"
	"supportmesh/agent/tool"
)

type fakeModelClient struct {
	responses []contractx.ModelResponse
	err       error
	requests  []contractx.ModelRequest
}

func (f *fakeModelClient) Complete(_ context.Context, req contractx.ModelRequest) (contractx.ModelResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return contractx.ModelResponse{}, f.err
	}
	if len(f.responses) == 0 {
		return contractx.ModelResponse{Content: "{}"}, nil
	}
	res := f.responses[0]
	f.responses = f.responses[1:]
	return res, nil
}

func newTestGateway() *tool.Gateway {
	return tool.NewGateway(store.NewSeededMemory())
}

func TestActDirectAnswer(t *testing.T) {
	t.Parallel()

	model := &fakeModelClient{responses: []contractx.ModelResponse{
		{Content: `{"requires_context":false,"customer_response":"All done."}`},
	}}
	s := newSpecialist(contractx.AgentTypeSupport, model, newTestGateway(), "system prompt")

	out, err := s.Act(context.Background(), contractx.TaskBrief{Task: "Reply", Query: "Hello"})
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if !strings.Contains(out, "All done.") {
		t.Fatalf("unexpected output: %q", out)
	}
	if len(model.requests) != 1 {
		t.Fatalf("expected a single model pass, got %d", len(model.requests))
	}
	if len(model.requests[0].Tools) == 0 {
		t.Fatal("first pass must declare tools")
	}
}

func TestActToolRound(t *testing.T) {
	t.Parallel()

	model := &fakeModelClient{responses: []contractx.ModelResponse{
		{ToolCalls: []contractx.ModelToolCall{{
			ID:        "call_1",
			Name:      tool.NameGetCustomer,
			Arguments: `{"customer_id": 5}`,
		}}},
		{Content: `{"handoff_summary":"Fetched customer 5","context_payload":{"id":5}}`},
	}}
	s := newSpecialist(contractx.AgentTypeData, model, newTestGateway(), "system prompt")

	out, err := s.Act(context.Background(), contractx.TaskBrief{Task: "Lookup", Query: "Get customer information for ID 5."})
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if !strings.Contains(out, "Fetched customer 5") {
		t.Fatalf("unexpected output: %q", out)
	}

	if len(model.requests) != 2 {
		t.Fatalf("expected two model passes, got %d", len(model.requests))
	}
	second := model.requests[1]
	if len(second.Tools) != 0 {
		t.Fatal("closing pass must not declare tools")
	}

	var toolMsg contractx.ModelMessage
	for _, m := range second.Messages {
		if m.Role == contractx.RoleTool {
			toolMsg = m
		}
	}
	if toolMsg.ToolCallID != "call_1" {
		t.Fatalf("tool message not threaded: %+v", second.Messages)
	}
	var envelope contractx.ToolResult
	if err := json.Unmarshal([]byte(toolMsg.Content), &envelope); err != nil {
		t.Fatalf("tool message is not a ToolResult: %v", err)
	}
	if !envelope.OK {
		t.Fatalf("expected successful envelope, got %+v", envelope)
	}
}

func TestActUnauthorizedTool(t *testing.T) {
	t.Parallel()

	model := &fakeModelClient{responses: []contractx.ModelResponse{
		{ToolCalls: []contractx.ModelToolCall{{
			ID:        "call_1",
			Name:      tool.NameCreateTicket,
			Arguments: `{"customer_id":1,"issue":"x","priority":"low"}`,
		}}},
		{Content: `{"handoff_summary":"denied","context_payload":{}}`},
	}}
	s := newSpecialist(contractx.AgentTypeData, model, newTestGateway(), "system prompt")

	if _, err := s.Act(context.Background(), contractx.TaskBrief{Task: "Lookup", Query: "q"}); err != nil {
		t.Fatalf("Act: %v", err)
	}

	second := model.requests[1]
	found := false
	for _, m := range second.Messages {
		if m.Role == contractx.RoleTool && strings.Contains(m.Content, "not available") {
			found = true
		}
	}
	if !found {
		t.Fatal("unauthorized tool call should produce an error envelope for the model")
	}
}

func TestActModelFailurePropagates(t *testing.T) {
	t.Parallel()

	model := &fakeModelClient{err: contractx.ErrModelInvoke}
	s := newSpecialist(contractx.AgentTypeSupport, model, newTestGateway(), "system prompt")

	_, err := s.Act(context.Background(), contractx.TaskBrief{Task: "Reply", Query: "q"})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestBuildUserMessage(t *testing.T) {
	t.Parallel()

	msg := buildUserMessage(contractx.TaskBrief{
		Task:         "Fetch profile",
		Query:        "Get customer information for ID 5.",
		ScenarioHint: "simple_lookup",
		Reminder:     "missing required field handoff_summary",
	})
	for _, want := range []string{"Task: Fetch profile", "Scenario hint: simple_lookup", "ROUTER REMINDER:", "No structured context yet."} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}

	msg = buildUserMessage(contractx.TaskBrief{Task: "t", Query: "q", Context: map[string]any{"id": 5}})
	if !strings.Contains(msg, `"id":5`) {
		t.Fatalf("context payload not serialized:\n%s", msg)
	}
}

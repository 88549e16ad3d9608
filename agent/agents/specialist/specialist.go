// Package specialist implements the two role-bound workers: the data
// specialist fetches and mutates records through the tool gateway, the
// support specialist drafts the customer-facing reply. Both run the same
// bounded loop: one model pass that may request tools, one tool round, one
// closing model pass.
package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "supportmesh/agent/contract"
)

type specialistImpl struct {
	agentType    contractx.AgentType
	model        contractx.ModelClient
	gateway      contractx.ToolGateway
	systemPrompt string
	specs        []contractx.ToolSpec
	allowedTools map[string]struct{}
}

func newSpecialist(
	agentType contractx.AgentType,
	model contractx.ModelClient,
	gateway contractx.ToolGateway,
	systemPrompt string,
) *specialistImpl {
	specs := gateway.SpecsFor(agentType)
	allowed := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if strings.TrimSpace(spec.Name) == "" {
			continue
		}
		allowed[spec.Name] = struct{}{}
	}
	return &specialistImpl{
		agentType:    agentType,
		model:        model,
		gateway:      gateway,
		systemPrompt: systemPrompt,
		specs:        specs,
		allowedTools: allowed,
	}
}

func (s *specialistImpl) Act(ctx context.Context, brief contractx.TaskBrief) (string, error) {
	messages := []contractx.ModelMessage{
		{Role: contractx.RoleUser, Content: buildUserMessage(brief)},
	}

	first, err := s.model.Complete(ctx, contractx.ModelRequest{
		System:   s.systemPrompt,
		Messages: messages,
		Tools:    s.specs,
	})
	if err != nil {
		return "", err
	}
	if len(first.ToolCalls) == 0 {
		return first.Content, nil
	}

	messages = append(messages, contractx.ModelMessage{
		Role:    contractx.RoleAssistant,
		Content: first.Content,
		Raw:     first.Raw,
	})
	for _, call := range first.ToolCalls {
		messages = append(messages, contractx.ModelMessage{
			Role:       contractx.RoleTool,
			Content:    s.runToolCall(ctx, call),
			ToolCallID: call.ID,
		})
	}

	// Closing pass without tools so the model must emit the JSON envelope.
	final, err := s.model.Complete(ctx, contractx.ModelRequest{
		System:   s.systemPrompt,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	return final.Content, nil
}

func (s *specialistImpl) runToolCall(ctx context.Context, call contractx.ModelToolCall) string {
	if _, ok := s.allowedTools[call.Name]; !ok {
		log.Warn().
			Str("specialist", string(s.agentType)).
			Str("tool", call.Name).
			Msg("model requested unauthorized tool")
		return fmt.Sprintf(`{"success":false,"error":"tool %q is not available to the %s specialist"}`, call.Name, s.agentType)
	}

	var args map[string]any
	if trimmed := strings.TrimSpace(call.Arguments); trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
			return fmt.Sprintf(`{"success":false,"error":"tool arguments are not valid JSON: %s"}`, err)
		}
	}

	res, err := s.gateway.Invoke(ctx, call.Name, args)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":%q}`, err.Error())
	}

	encoded, err := json.Marshal(res)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to encode tool result: %s"}`, err)
	}
	return string(encoded)
}

func buildUserMessage(brief contractx.TaskBrief) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", brief.Task)
	fmt.Fprintf(&b, "Customer query: %s\n", brief.Query)
	if brief.ScenarioHint != "" {
		fmt.Fprintf(&b, "Scenario hint: %s\n", brief.ScenarioHint)
	}

	if brief.Context != nil {
		encoded, err := json.Marshal(brief.Context)
		if err != nil {
			encoded = []byte(fmt.Sprint(brief.Context))
		}
		fmt.Fprintf(&b, "Context payload: %s\n", encoded)
	} else {
		b.WriteString("Context payload: No structured context yet.\n")
	}

	if brief.Reminder != "" {
		fmt.Fprintf(&b, "ROUTER REMINDER: %s\n", brief.Reminder)
	}
	b.WriteString("Respond with STRICT JSON only, per your instructions.")
	return b.String()
}

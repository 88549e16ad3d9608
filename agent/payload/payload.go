// Package payload parses and validates the JSON envelopes specialists return.
// Specialist output is model text: it may be fenced, wrapped in prose, or not
// JSON at all. The router validates strictly on every attempt and, once
// retries are exhausted, synthesizes a substitute via FallbackData or
// CoerceSupport; the lenient mode fills defaults for callers that prefer
// best-effort acceptance over retrying.
package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	"supportmesh/agent/contract"
)

// ParseLoose extracts a JSON object from raw model text. It strips markdown
// code fences, then falls back to slicing from the first '{' to the last '}'.
func ParseLoose(raw string) (map[string]any, bool) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		return obj, true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// ValidateData checks raw specialist text against the data envelope. The
// returned reason is empty when the result is usable; otherwise it names the
// violation so the router can feed it back as a retry reminder.
func ValidateData(raw string, strict bool) (contract.DataResult, string) {
	obj, ok := ParseLoose(raw)
	if !ok {
		return contract.DataResult{}, "response is not a JSON object"
	}

	summary, _ := obj["handoff_summary"].(string)
	if strings.TrimSpace(summary) == "" {
		if strict {
			return contract.DataResult{}, "missing required field handoff_summary"
		}
		summary = "Customer data retrieved."
	}

	payload, present := obj["context_payload"]
	if !present || payload == nil {
		if strict {
			return contract.DataResult{}, "missing required field context_payload"
		}
		payload = map[string]any{}
	}

	next, _ := obj["recommended_next_agent"].(string)
	if next == "" {
		next = "router"
	}

	res := contract.DataResult{
		HandoffSummary:       summary,
		RecommendedNextAgent: next,
		ContextPayload:       payload,
	}
	if v, ok := obj["context_type"].(string); ok {
		res.ContextType = v
	}
	if v, ok := obj["notes_for_router"].(string); ok {
		res.NotesForRouter = v
	}
	return res, ""
}

// ValidateSupport checks raw specialist text against the support envelope.
// The two legs are mutually exclusive: requires_context=true must name a
// context_type, requires_context=false must carry a customer_response.
func ValidateSupport(raw string, strict bool) (contract.SupportResult, string) {
	obj, ok := ParseLoose(raw)
	if !ok {
		return contract.SupportResult{}, "response is not a JSON object"
	}

	requires, present := obj["requires_context"].(bool)
	if !present {
		if _, there := obj["requires_context"]; !there {
			if strict {
				return contract.SupportResult{}, "missing required field requires_context"
			}
			requires = true
		} else if strict {
			return contract.SupportResult{}, "requires_context must be a boolean"
		} else {
			requires = true
		}
	}

	res := contract.SupportResult{RequiresContext: requires}
	if v, ok := obj["notes_for_router"].(string); ok {
		res.NotesForRouter = v
	}

	if requires {
		ctxType, _ := obj["context_type"].(string)
		if strings.TrimSpace(ctxType) == "" {
			if strict {
				return contract.SupportResult{}, "requires_context=true but context_type is missing"
			}
			ctxType = "profile"
		}
		res.ContextType = ctxType
		return res, ""
	}

	// Final answers never carry a context_type.
	resp, _ := obj["customer_response"].(string)
	if strings.TrimSpace(resp) == "" {
		if strict {
			return contract.SupportResult{}, "requires_context=false but customer_response is missing"
		}
		dump, err := json.Marshal(obj)
		if err != nil {
			dump = []byte(raw)
		}
		resp = string(dump)
	}
	res.CustomerResponse = resp
	return res, ""
}

// FallbackData wraps unparseable data-specialist output so the pipeline can
// continue with the raw text preserved as the context payload.
func FallbackData(raw string) contract.DataResult {
	return contract.DataResult{
		HandoffSummary:       "Customer data agent returned unexpected output.",
		RecommendedNextAgent: "router",
		ContextPayload:       map[string]any{"raw_text": strings.TrimSpace(raw)},
		NotesForRouter:       "Data response did not match the expected schema; raw text attached.",
	}
}

// CoerceSupport interprets unparseable support-specialist output by keyword:
// phrasing that asks for more information becomes a context request, anything
// else is treated as the final customer-facing answer.
func CoerceSupport(raw string) contract.SupportResult {
	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)

	asking := false
	for _, marker := range []string{"need", "provide your", "customer id", "billing", "more information", "context", "cannot proceed"} {
		if strings.Contains(lower, marker) {
			asking = true
			break
		}
	}
	if !asking {
		if text == "" {
			text = "Support response unavailable."
		}
		return contract.SupportResult{
			CustomerResponse: text,
			NotesForRouter:   "Support agent returned plain text; router wrapped it in schema.",
		}
	}

	ctxType := "profile"
	switch {
	case strings.Contains(lower, "billing"), strings.Contains(lower, "charge"), strings.Contains(lower, "refund"):
		ctxType = "billing"
	case strings.Contains(lower, "ticket"), strings.Contains(lower, "history"):
		ctxType = "history"
	}
	return contract.SupportResult{
		RequiresContext: true,
		ContextType:     ctxType,
		NotesForRouter:  fmt.Sprintf("Support agent asked for additional context but responded outside JSON. Original text: %s", text),
	}
}

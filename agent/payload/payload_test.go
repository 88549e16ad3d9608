package payload

import (
	"strings"
	"testing"
)

func TestParseLooseFenced(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"requires_context\": true, \"context_type\": \"billing\"}\n```"
	obj, ok := ParseLoose(raw)
	if !ok {
		t.Fatal("expected fenced JSON to parse")
	}
	if obj["context_type"] != "billing" {
		t.Fatalf("unexpected object: %#v", obj)
	}
}

func TestParseLooseSalvage(t *testing.T) {
	t.Parallel()

	raw := "Sure, here is the result: {\"handoff_summary\": \"done\", \"context_payload\": {\"id\": 5}} hope that helps!"
	obj, ok := ParseLoose(raw)
	if !ok {
		t.Fatal("expected embedded JSON to parse")
	}
	if obj["handoff_summary"] != "done" {
		t.Fatalf("unexpected object: %#v", obj)
	}
}

func TestParseLooseProseAroundFence(t *testing.T) {
	t.Parallel()

	raw := "Sure! ```json\n{\"requires_context\": false, \"customer_response\": \"ok\"}\n```"
	obj, ok := ParseLoose(raw)
	if !ok {
		t.Fatal("expected fenced JSON inside prose to parse")
	}
	if obj["customer_response"] != "ok" {
		t.Fatalf("unexpected object: %#v", obj)
	}
}

func TestParseLooseGarbage(t *testing.T) {
	t.Parallel()

	if _, ok := ParseLoose("I could not do that."); ok {
		t.Fatal("expected non-JSON text to fail")
	}
}

func TestValidateDataStrict(t *testing.T) {
	t.Parallel()

	raw := `{"handoff_summary":"Fetched customer 5","recommended_next_agent":"support","context_type":"profile","context_payload":{"id":5,"name":"Eve Adams"}}`
	res, reason := ValidateData(raw, true)
	if reason != "" {
		t.Fatalf("expected valid, got reason %q", reason)
	}
	if res.HandoffSummary != "Fetched customer 5" || res.ContextType != "profile" {
		t.Fatalf("unexpected result: %+v", res)
	}

	if _, reason := ValidateData(`{"context_payload":{}}`, true); reason == "" {
		t.Fatal("expected missing handoff_summary to be rejected in strict mode")
	}
	if _, reason := ValidateData(`{"handoff_summary":"x"}`, true); reason == "" {
		t.Fatal("expected missing context_payload to be rejected in strict mode")
	}
}

func TestValidateDataLenientDefaults(t *testing.T) {
	t.Parallel()

	res, reason := ValidateData(`{"notes_for_router":"partial"}`, false)
	if reason != "" {
		t.Fatalf("lenient mode should fill defaults, got %q", reason)
	}
	if res.HandoffSummary == "" || res.ContextPayload == nil {
		t.Fatalf("defaults not applied: %+v", res)
	}
	if res.RecommendedNextAgent != "router" {
		t.Fatalf("expected router default, got %q", res.RecommendedNextAgent)
	}
}

func TestValidateSupportContextLeg(t *testing.T) {
	t.Parallel()

	res, reason := ValidateSupport(`{"requires_context":true,"context_type":"billing","notes_for_router":"need invoices"}`, true)
	if reason != "" {
		t.Fatalf("expected valid, got %q", reason)
	}
	if !res.RequiresContext || res.ContextType != "billing" {
		t.Fatalf("unexpected result: %+v", res)
	}

	if _, reason := ValidateSupport(`{"requires_context":true}`, true); reason == "" {
		t.Fatal("expected missing context_type to be rejected in strict mode")
	}

	res, reason = ValidateSupport(`{"requires_context":true}`, false)
	if reason != "" || res.ContextType != "profile" {
		t.Fatalf("lenient mode should default context_type to profile: %+v %q", res, reason)
	}
}

func TestValidateSupportFinalLeg(t *testing.T) {
	t.Parallel()

	res, reason := ValidateSupport(`{"requires_context":false,"context_type":"billing","customer_response":"All set."}`, true)
	if reason != "" {
		t.Fatalf("expected valid, got %q", reason)
	}
	if res.RequiresContext || res.CustomerResponse != "All set." {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.ContextType != "" {
		t.Fatal("final answers must not carry a context_type")
	}

	if _, reason := ValidateSupport(`{"requires_context":false}`, true); reason == "" {
		t.Fatal("expected missing customer_response to be rejected in strict mode")
	}

	res, reason = ValidateSupport(`{"requires_context":false,"detail":"x"}`, false)
	if reason != "" || res.CustomerResponse == "" {
		t.Fatalf("lenient mode should dump the object as the response: %+v %q", res, reason)
	}
}

func TestFallbackData(t *testing.T) {
	t.Parallel()

	res := FallbackData("  not json at all  ")
	payload, ok := res.ContextPayload.(map[string]any)
	if !ok || payload["raw_text"] != "not json at all" {
		t.Fatalf("raw text not preserved: %+v", res)
	}
}

func TestCoerceSupport(t *testing.T) {
	t.Parallel()

	res := CoerceSupport("I need the customer's billing records before I can answer.")
	if !res.RequiresContext || res.ContextType != "billing" {
		t.Fatalf("expected billing context request, got %+v", res)
	}

	res = CoerceSupport("Please provide your customer ID and ticket history.")
	if !res.RequiresContext || res.ContextType != "history" {
		t.Fatalf("expected history context request, got %+v", res)
	}

	// "billing" alone must trigger a context request, even without other
	// asking phrases.
	res = CoerceSupport("Sorry about the billing mix-up! It has been resolved.")
	if !res.RequiresContext || res.ContextType != "billing" {
		t.Fatalf("billing mention alone should request billing context, got %+v", res)
	}

	res = CoerceSupport("Your account has been upgraded. Enjoy!")
	if res.RequiresContext || !strings.Contains(res.CustomerResponse, "upgraded") {
		t.Fatalf("expected final answer, got %+v", res)
	}
}

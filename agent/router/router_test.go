package router

import (
	"context"
	"strings"
	"testing"

	contractx "supportmesh/agent/contract"
)

type fakeTransport struct {
	dataOutputs    []string
	supportOutputs []string

	dataBriefs    []contractx.TaskBrief
	supportBriefs []contractx.TaskBrief

	err error
}

func (f *fakeTransport) Deliver(_ context.Context, agent contractx.AgentType, brief contractx.TaskBrief) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	switch agent {
	case contractx.AgentTypeData:
		f.dataBriefs = append(f.dataBriefs, brief)
		return pop(&f.dataOutputs), nil
	case contractx.AgentTypeSupport:
		f.supportBriefs = append(f.supportBriefs, brief)
		return pop(&f.supportOutputs), nil
	}
	return "", nil
}

// pop consumes the queue but keeps repeating the final entry.
func pop(queue *[]string) string {
	if len(*queue) == 0 {
		return ""
	}
	out := (*queue)[0]
	if len(*queue) > 1 {
		*queue = (*queue)[1:]
	}
	return out
}

func newRouter(t *testing.T, tr contractx.Transport) *Router {
	t.Helper()
	r, err := New(tr, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

const validDataJSON = `{"handoff_summary":"Fetched customer 5","recommended_next_agent":"router","context_type":"profile","context_payload":{"id":5,"name":"Eve Adams"}}`

func TestHandleSimpleLookup(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{dataOutputs: []string{validDataJSON}}
	r := newRouter(t, tr)

	answer, err := r.Handle(context.Background(), "Get customer information for ID 5.")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.HasPrefix(answer, "Data Retrieval Complete:") {
		t.Fatalf("lookup answers must announce retrieval: %q", answer)
	}
	if !strings.Contains(answer, "Eve Adams") {
		t.Fatalf("payload missing from answer: %q", answer)
	}
	if len(tr.supportBriefs) != 0 {
		t.Fatal("pure lookups must not involve the support specialist")
	}
	if len(tr.dataBriefs) != 1 || !strings.Contains(tr.dataBriefs[0].Task, "get_customer") {
		t.Fatalf("unexpected data brief: %+v", tr.dataBriefs)
	}
}

func TestHandleUpgradeFlow(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{
		dataOutputs: []string{validDataJSON},
		supportOutputs: []string{
			`{"requires_context":false,"customer_response":"Your plan upgrade is booked.","notes_for_router":"Ticket #9 created."}`,
		},
	}
	r := newRouter(t, tr)

	answer, err := r.Handle(context.Background(), "I need an upgrade, customer ID 3.")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(answer, "Final customer message:") || !strings.Contains(answer, "Your plan upgrade is booked.") {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if !strings.Contains(answer, "[Router note: Ticket #9 created.]") {
		t.Fatalf("router note missing: %q", answer)
	}
	if len(tr.dataBriefs) != 1 || len(tr.supportBriefs) != 1 {
		t.Fatalf("expected one data and one support call, got %d/%d", len(tr.dataBriefs), len(tr.supportBriefs))
	}
	if tr.supportBriefs[0].Context == nil {
		t.Fatal("support brief should carry the fetched context")
	}
}

func TestHandleUpdateEmailHistory(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{
		dataOutputs: []string{
			`{"handoff_summary":"Email updated, 2 tickets found","context_payload":{"update":"Customer ID 4 updated.","tickets":[{"id":4},{"id":5}]}}`,
		},
		supportOutputs: []string{
			`{"requires_context":false,"customer_response":"Your email is now new@email.com. You have 2 tickets on file."}`,
		},
	}
	r := newRouter(t, tr)

	answer, err := r.Handle(context.Background(), "My customer ID is 4. Update my email to new@email.com and show my ticket history.")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(answer, "Your email is now new@email.com.") {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if len(tr.dataBriefs) != 1 {
		t.Fatalf("expected one data call, got %d", len(tr.dataBriefs))
	}
	task := tr.dataBriefs[0].Task
	if !strings.Contains(task, "update_customer") || !strings.Contains(task, "get_customer_history") {
		t.Fatalf("data brief must cover update and history: %q", task)
	}
	if !strings.Contains(task, "new@email.com") || !strings.Contains(task, "customer ID 4") {
		t.Fatalf("extracted entities missing from brief: %q", task)
	}
}

func TestHandleBillingWithoutID(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{
		supportOutputs: []string{
			`{"requires_context":true,"context_type":"billing","notes_for_router":"Need the customer's billing history to proceed."}`,
		},
	}
	r := newRouter(t, tr)

	answer, err := r.Handle(context.Background(), "I've been charged twice, please refund immediately!")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if answer != "Need the customer's billing history to proceed." {
		t.Fatalf("unresolved context request should surface the notes: %q", answer)
	}
	if len(tr.dataBriefs) != 0 {
		t.Fatal("without a customer id the router cannot fetch context")
	}
}

func TestHandleBillingEscalationLoop(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{
		dataOutputs: []string{
			`{"handoff_summary":"Ticket history for customer 3","context_payload":[{"id":7,"issue":"billing"}]}`,
		},
		supportOutputs: []string{
			`{"requires_context":true,"context_type":"billing","notes_for_router":"Need billing history."}`,
			`{"requires_context":false,"customer_response":"Refund for ticket 7 is underway."}`,
		},
	}
	r := newRouter(t, tr)

	answer, err := r.Handle(context.Background(), "My customer ID is 3. I want to cancel my subscription but I'm having billing issues.")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(answer, "Refund for ticket 7 is underway.") {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if len(tr.supportBriefs) != 2 {
		t.Fatalf("expected two support rounds, got %d", len(tr.supportBriefs))
	}
	if len(tr.dataBriefs) != 1 || !strings.Contains(tr.dataBriefs[0].Task, "get_customer_history") {
		t.Fatalf("billing context should come from history: %+v", tr.dataBriefs)
	}
	if tr.supportBriefs[1].Context == nil {
		t.Fatal("second support round must carry the fetched context")
	}
}

func TestHandleDataRetryThenFallback(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{dataOutputs: []string{"not json at all"}}
	r := newRouter(t, tr)

	answer, err := r.Handle(context.Background(), "Get customer information for ID 5.")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(answer, "Customer data agent returned unexpected output.") {
		t.Fatalf("fallback summary missing: %q", answer)
	}
	if len(tr.dataBriefs) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(tr.dataBriefs))
	}
	if tr.dataBriefs[0].Reminder != "" {
		t.Fatal("first attempt must not carry a reminder")
	}
	if tr.dataBriefs[1].Reminder == "" || tr.dataBriefs[2].Reminder == "" {
		t.Fatalf("retries must carry the rejection reason: %+v", tr.dataBriefs)
	}
}

func TestHandleSupportRetryThenCoerce(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{
		supportOutputs: []string{"I need your billing history before I can help."},
	}
	r := newRouter(t, tr)

	answer, err := r.Handle(context.Background(), "I've been charged twice, please refund immediately!")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(answer, "Original text: I need your billing history") {
		t.Fatalf("coerced context request should surface the raw text: %q", answer)
	}
	if len(tr.supportBriefs) != 3 {
		t.Fatalf("expected 3 support attempts before coercion, got %d", len(tr.supportBriefs))
	}
	if tr.supportBriefs[0].Reminder != "" {
		t.Fatal("first attempt must not carry a reminder")
	}
	if tr.supportBriefs[1].Reminder == "" || tr.supportBriefs[2].Reminder == "" {
		t.Fatalf("retries must carry the rejection reason: %+v", tr.supportBriefs)
	}
	if len(tr.dataBriefs) != 0 {
		t.Fatal("without a customer id the coerced context request must terminate the flow")
	}
}

func TestHandleSupportRoundCap(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{
		dataOutputs: []string{validDataJSON},
		supportOutputs: []string{
			`{"requires_context":true,"context_type":"profile"}`,
		},
	}
	r := newRouter(t, tr)

	answer, err := r.Handle(context.Background(), "I need help with my account, customer ID 2.")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if answer != "Support requires more profile before responding." {
		t.Fatalf("unexpected answer after round cap: %q", answer)
	}
	if len(tr.supportBriefs) != defaultMaxRounds {
		t.Fatalf("expected %d support rounds, got %d", defaultMaxRounds, len(tr.supportBriefs))
	}
}

func TestHandleModelOutage(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{err: contractx.ErrModelInvoke}
	r := newRouter(t, tr)

	answer, err := r.Handle(context.Background(), "Get customer information for ID 5.")
	if err != nil {
		t.Fatalf("outages must degrade, not error: %v", err)
	}
	if answer != failureAnswer {
		t.Fatalf("unexpected answer: %q", answer)
	}
}

func TestHandleClarifications(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		query string
		want  string
	}{
		{"update without id", "Update my email to new@email.com and show my ticket history.", "Please provide your customer ID so I can update the account."},
		{"update without email", "My customer ID is 4. Update my email and show my ticket history.", "Please provide the new email address to update."},
		{"lookup without id", "Show me the customer information please.", "Please provide a customer ID so I can review the account."},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tr := &fakeTransport{}
			r := newRouter(t, tr)

			answer, err := r.Handle(context.Background(), tc.query)
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if answer != tc.want {
				t.Fatalf("Handle(%q) = %q, want %q", tc.query, answer, tc.want)
			}
			if len(tr.dataBriefs)+len(tr.supportBriefs) != 0 {
				t.Fatal("clarifications must not reach specialists")
			}
		})
	}
}

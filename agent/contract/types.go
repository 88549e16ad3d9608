package contract

type AgentType string

const (
	AgentTypeData    AgentType = "data"
	AgentTypeSupport AgentType = "support"
)

// TaskBrief is the per-invocation message the router builds for a specialist:
// instructions, the original customer query, and any context payload carried
// forward from a prior specialist. Briefs are ephemeral and never persisted.
type TaskBrief struct {
	Task         string `json:"task"`
	Query        string `json:"query"`
	Context      any    `json:"context,omitempty"`
	ScenarioHint string `json:"scenario_hint,omitempty"`
	// Reminder carries the previous attempt's invalidity reason when the
	// router retries a specialist call.
	Reminder string `json:"reminder,omitempty"`
}

// DataResult is the validated envelope returned by the data specialist.
type DataResult struct {
	HandoffSummary       string `json:"handoff_summary"`
	RecommendedNextAgent string `json:"recommended_next_agent"`
	ContextType          string `json:"context_type,omitempty"`
	ContextPayload       any    `json:"context_payload"`
	NotesForRouter       string `json:"notes_for_router,omitempty"`
}

// SupportResult is the validated envelope returned by the support specialist.
// RequiresContext=true implies ContextType is set; RequiresContext=false
// implies CustomerResponse is set.
type SupportResult struct {
	RequiresContext  bool   `json:"requires_context"`
	ContextType      string `json:"context_type,omitempty"`
	NotesForRouter   string `json:"notes_for_router,omitempty"`
	CustomerResponse string `json:"customer_response,omitempty"`
}

// ToolResult is the normalized envelope every gateway operation returns.
// Store-level failures land in Err with OK=false; they are data, not Go
// errors, so specialists can relay them to the model verbatim.
type ToolResult struct {
	OK      bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Err     string `json:"error,omitempty"`
}

// ToolSpec declares a gateway operation: its name, description, a
// JSON-schema style property map, and the required argument keys.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
	Required    []string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type ModelMessage struct {
	Role    Role
	Content string
	// ToolCallID links a tool-role message to the call it answers.
	ToolCallID string
	// Raw holds the provider-native form of an assistant message that carried
	// tool calls, so the client can replay it on the follow-up pass. Fakes
	// may leave it nil.
	Raw any
}

type ModelToolCall struct {
	ID        string
	Name      string
	Arguments string
}

type ModelRequest struct {
	System   string
	Messages []ModelMessage
	Tools    []ToolSpec
}

type ModelResponse struct {
	Content   string
	ToolCalls []ModelToolCall
	// Raw is the provider-native assistant message; thread it back via
	// ModelMessage.Raw when continuing the conversation.
	Raw any
}

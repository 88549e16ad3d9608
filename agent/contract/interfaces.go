package contract

import "context"

// Specialist is a role-bound worker: given a task brief it may call gateway
// tools and returns its raw text output. The router never sees anything but
// text until the payload validator parses it.
type Specialist interface {
	Act(ctx context.Context, brief TaskBrief) (string, error)
}

// Registry exposes the two role-bound specialists.
type Registry interface {
	Data() Specialist
	Support() Specialist
}

// Transport delivers a task brief to a specialist, in-process or over the
// network, and returns the specialist's raw text output.
type Transport interface {
	Deliver(ctx context.Context, agent AgentType, brief TaskBrief) (string, error)
}

// ToolGateway invokes a named operation with keyword arguments. Unknown
// names and missing/mistyped required arguments are caller errors; backing
// store failures travel inside the ToolResult envelope.
type ToolGateway interface {
	Invoke(ctx context.Context, name string, args map[string]any) (ToolResult, error)
	SpecsFor(agent AgentType) []ToolSpec
}

// ModelClient is the opaque model function: messages and tool declarations
// in, text and tool-call requests out. Transport/auth failures wrap
// ErrModelInvoke.
type ModelClient interface {
	Complete(ctx context.Context, req ModelRequest) (ModelResponse, error)
}

package specialist

import (
	"fmt"

	contractx "supportmesh/agent/contract"
	llmx "supportmesh/agent/llm"
	promptx "supportmesh/agent/prompt"
	"supportmesh/pkg/openrouter"
)

type registryImpl struct {
	data    contractx.Specialist
	support contractx.Specialist
}

func (r *registryImpl) Data() contractx.Specialist {
	return r.data
}

func (r *registryImpl) Support() contractx.Specialist {
	return r.support
}

func NewRegistry(cfg llmx.Config, gateway contractx.ToolGateway) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	dataModel, err := openrouter.NewClient(cfg.OpenRouterFor(contractx.AgentTypeData))
	if err != nil {
		return nil, fmt.Errorf("%w: create data model: %v", contractx.ErrModelInvoke, err)
	}
	supportModel, err := openrouter.NewClient(cfg.OpenRouterFor(contractx.AgentTypeSupport))
	if err != nil {
		return nil, fmt.Errorf("%w: create support model: %v", contractx.ErrModelInvoke, err)
	}

	return &registryImpl{
		data:    newSpecialist(contractx.AgentTypeData, dataModel, gateway, prompts.Data),
		support: newSpecialist(contractx.AgentTypeSupport, supportModel, gateway, prompts.Support),
	}, nil
}

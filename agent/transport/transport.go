// Package transport moves task briefs between the router and specialists.
// InProcess calls the registry directly; HTTP posts briefs to remote
// specialist endpoints. The router only sees the Transport interface, so
// deployments can split specialists out without touching orchestration.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	contractx "supportmesh/agent/contract"
)

// InProcess delivers briefs to specialists living in the same process.
type InProcess struct {
	registry contractx.Registry
}

var _ contractx.Transport = (*InProcess)(nil)

func NewInProcess(registry contractx.Registry) *InProcess {
	return &InProcess{registry: registry}
}

func (t *InProcess) Deliver(ctx context.Context, agent contractx.AgentType, brief contractx.TaskBrief) (string, error) {
	switch agent {
	case contractx.AgentTypeData:
		return t.registry.Data().Act(ctx, brief)
	case contractx.AgentTypeSupport:
		return t.registry.Support().Act(ctx, brief)
	default:
		return "", fmt.Errorf("%w: unknown agent type %q", contractx.ErrValidation, agent)
	}
}

// HTTPConfig points at remote specialist endpoints.
type HTTPConfig struct {
	DataURL    string        `envconfig:"DATA_URL" split_words:"true"`
	SupportURL string        `envconfig:"SUPPORT_URL" split_words:"true"`
	Timeout    time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
}

// HTTP delivers briefs to specialist processes over JSON POST. The remote
// end answers {"text": "<raw specialist output>"}.
type HTTP struct {
	cfg    HTTPConfig
	client *http.Client
}

var _ contractx.Transport = (*HTTP)(nil)

func NewHTTP(cfg HTTPConfig) *HTTP {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTP{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type deliverResponse struct {
	Text string `json:"text"`
}

func (t *HTTP) Deliver(ctx context.Context, agent contractx.AgentType, brief contractx.TaskBrief) (string, error) {
	var url string
	switch agent {
	case contractx.AgentTypeData:
		url = t.cfg.DataURL
	case contractx.AgentTypeSupport:
		url = t.cfg.SupportURL
	default:
		return "", fmt.Errorf("%w: unknown agent type %q", contractx.ErrValidation, agent)
	}
	if url == "" {
		return "", fmt.Errorf("%w: no endpoint configured for agent %q", contractx.ErrValidation, agent)
	}

	body, err := json.Marshal(brief)
	if err != nil {
		return "", fmt.Errorf("%w: marshal brief: %v", contractx.ErrValidation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", contractx.ErrModelInvoke, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: deliver to %s: %v", contractx.ErrModelInvoke, agent, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", contractx.ErrModelInvoke, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: agent %s returned status %d", contractx.ErrModelInvoke, agent, resp.StatusCode)
	}

	var out deliverResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: agent %s response is not a text envelope: %v", contractx.ErrSchemaViolation, agent, err)
	}
	return out.Text, nil
}

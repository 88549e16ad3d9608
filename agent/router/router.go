// Package router is the deterministic orchestrator: it classifies the
// incoming query, briefs the data specialist for context, negotiates with the
// support specialist until a final reply exists, and formats the answer. All
// model access happens behind the Transport; the router itself never calls a
// model.
package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "supportmesh/agent/contract"
	"supportmesh/agent/payload"
)

const (
	defaultMaxAttempts = 3
	defaultMaxRounds   = 5
)

// failureAnswer is returned to the customer when the model layer is down.
const failureAnswer = "We hit a temporary problem while preparing your answer. Please try again in a moment."

type Config struct {
	// MaxAttempts bounds retries per specialist call; MaxRounds bounds the
	// support context-negotiation loop.
	MaxAttempts int
	MaxRounds   int
}

type Router struct {
	transport   contractx.Transport
	maxAttempts int
	maxRounds   int

	graphRunner compose.Runnable[GraphInput, GraphOutput]
}

func New(transport contractx.Transport, cfg Config) (*Router, error) {
	if transport == nil {
		return nil, errors.New("transport is required")
	}

	r := &Router{
		transport:   transport,
		maxAttempts: cfg.MaxAttempts,
		maxRounds:   cfg.MaxRounds,
	}
	if r.maxAttempts <= 0 {
		r.maxAttempts = defaultMaxAttempts
	}
	if r.maxRounds <= 0 {
		r.maxRounds = defaultMaxRounds
	}

	graphRunner, err := r.compileHandleQueryGraph(context.Background())
	if err != nil {
		return nil, err
	}
	r.graphRunner = graphRunner

	return r, nil
}

// Handle answers a single customer query. Model-layer outages degrade to a
// generic plain-text answer instead of an error; the caller always gets
// something presentable.
func (r *Router) Handle(ctx context.Context, query string) (string, error) {
	out, err := r.graphRunner.Invoke(ctx, GraphInput{Query: query})
	if err != nil {
		if errors.Is(err, contractx.ErrModelInvoke) {
			log.Error().Err(err).Msg("model layer unavailable, returning generic answer")
			return failureAnswer, nil
		}
		return "", err
	}
	return out.Answer, nil
}

// callData briefs the data specialist, retrying schema violations with a
// reminder before settling on a synthesized fallback.
func (r *Router) callData(ctx context.Context, task, query, hint string, briefContext any) (contractx.DataResult, error) {
	reminder := ""
	lastRaw := ""
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		brief := contractx.TaskBrief{
			Task:         task,
			Query:        query,
			Context:      briefContext,
			ScenarioHint: hint,
			Reminder:     reminder,
		}
		log.Debug().Str("to", "data").Int("attempt", attempt+1).Msg("router handoff")

		raw, err := r.transport.Deliver(ctx, contractx.AgentTypeData, brief)
		if err != nil {
			return contractx.DataResult{}, err
		}
		lastRaw = raw

		res, reason := payload.ValidateData(raw, true)
		if reason != "" {
			reminder = reason
			log.Warn().Str("reason", reason).Msg("data payload rejected, retrying")
			continue
		}
		return res, nil
	}

	log.Warn().Msg("data specialist exhausted retries, using fallback payload")
	return payload.FallbackData(lastRaw), nil
}

// callSupport briefs the support specialist with the same retry discipline;
// exhaustion coerces the last raw text into the envelope by keyword.
func (r *Router) callSupport(ctx context.Context, task, query, hint string, briefContext any) (contractx.SupportResult, error) {
	reminder := ""
	lastRaw := ""
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		brief := contractx.TaskBrief{
			Task:         task,
			Query:        query,
			Context:      briefContext,
			ScenarioHint: hint,
			Reminder:     reminder,
		}
		log.Debug().Str("to", "support").Int("attempt", attempt+1).Msg("router handoff")

		raw, err := r.transport.Deliver(ctx, contractx.AgentTypeSupport, brief)
		if err != nil {
			return contractx.SupportResult{}, err
		}
		lastRaw = raw

		res, reason := payload.ValidateSupport(raw, true)
		if reason != "" {
			reminder = reason
			log.Warn().Str("reason", reason).Msg("support payload rejected, retrying")
			continue
		}
		return res, nil
	}

	log.Warn().Msg("support specialist exhausted retries, coercing raw text")
	if lastRaw == "" {
		lastRaw = "Support response unavailable."
	}
	return payload.CoerceSupport(lastRaw), nil
}

// requestContext translates a support context request into a data brief.
func (r *Router) requestContext(ctx context.Context, contextType string, customerID int64, query string) (contractx.DataResult, error) {
	var task string
	switch contextType {
	case "billing", "tickets", "history":
		task = fmt.Sprintf(
			"Provide the detailed ticket/billing history for customer ID %d using get_customer_history so support can resolve: %s",
			customerID, query)
	case "profile":
		task = fmt.Sprintf("Fetch the latest profile for customer ID %d using get_customer.", customerID)
	default:
		task = fmt.Sprintf("Provide %s details for customer ID %d relevant to: %s", contextType, customerID, query)
	}
	return r.callData(ctx, task, query, "general", nil)
}

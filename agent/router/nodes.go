package router

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "supportmesh/agent/contract"
	"supportmesh/agent/intent"
)

type GraphInput struct {
	Query string
}

type GraphOutput struct {
	Answer string
}

// flowState threads the per-query pipeline. Once Answer is set, downstream
// nodes pass through untouched.
type flowState struct {
	Query         string
	Scenario      intent.Scenario
	CustomerID    int64
	HasCustomerID bool
	NewEmail      string

	Context     any
	LastData    *contractx.DataResult
	LastSupport *contractx.SupportResult

	Answer string
}

// classifyQuery resolves the scenario and entities, short-circuiting with a
// clarification when a mutation or lookup lacks the data it needs.
func classifyQuery(in GraphInput) (*flowState, error) {
	state := &flowState{Query: in.Query}
	state.Scenario = intent.Classify(in.Query)
	state.CustomerID, state.HasCustomerID = intent.ExtractCustomerID(in.Query)
	state.NewEmail, _ = intent.ExtractEmail(in.Query)

	log.Info().
		Str("scenario", string(state.Scenario)).
		Bool("customer_id_known", state.HasCustomerID).
		Msg("query classified")

	switch state.Scenario {
	case intent.ScenarioUpdateEmailHistory, intent.ScenarioMultiIntent:
		if !state.HasCustomerID {
			state.Answer = "Please provide your customer ID so I can update the account."
		} else if state.NewEmail == "" {
			state.Answer = "Please provide the new email address to update."
		}
	case intent.ScenarioSimpleLookup, intent.ScenarioUpgrade, intent.ScenarioAccountHelp:
		if !state.HasCustomerID {
			state.Answer = "Please provide a customer ID so I can review the account."
		}
	}
	return state, nil
}

// fetchContext briefs the data specialist for the scenarios that start with
// retrieval. Billing escalations and id-less generic queries go straight to
// support.
func (r *Router) fetchContext(ctx context.Context, state *flowState) (*flowState, error) {
	if state.Answer != "" {
		return state, nil
	}

	var task string
	switch state.Scenario {
	case intent.ScenarioPremiumReport:
		task = "Identify premium/active customers and gather the status of all high-priority tickets. " +
			"Use list_customers/list_active_customers_with_open_tickets and get_high_priority_tickets_by_ids as needed. " +
			"Summarize counts and include the raw ticket list in context_payload. " +
			"Set recommended_next_agent to 'router' when done."
	case intent.ScenarioActiveOpen:
		task = "Use list_active_customers_with_open_tickets to provide all active customers that currently have open tickets. " +
			"Include the tool output in context_payload and recommended_next_agent='router'."
	case intent.ScenarioUpdateEmailHistory, intent.ScenarioMultiIntent:
		task = fmt.Sprintf(
			"Update customer ID %d's email to %s using update_customer, then fetch their ticket history via get_customer_history. "+
				"Include both the update confirmation and ticket list in context_payload.",
			state.CustomerID, state.NewEmail)
	case intent.ScenarioSimpleLookup, intent.ScenarioUpgrade, intent.ScenarioAccountHelp:
		task = fmt.Sprintf(
			"Retrieve the customer profile for ID %d using get_customer. "+
				"Return the tool payload verbatim inside context_payload and set recommended_next_agent to 'router'.",
			state.CustomerID)
	case intent.ScenarioBillingEscalation:
		// Support opens the billing dialog; context arrives on request.
		return state, nil
	default:
		if !state.HasCustomerID {
			return state, nil
		}
		task = fmt.Sprintf("Retrieve the customer profile for ID %d and include ticket counts if available.", state.CustomerID)
	}

	res, err := r.callData(ctx, task, state.Query, scenarioHint(state.Scenario), nil)
	if err != nil {
		return nil, err
	}
	state.LastData = &res
	state.Context = res.ContextPayload
	return state, nil
}

// supportDialog negotiates with the support specialist, fetching requested
// context between rounds. The loop is bounded; an unresolved context request
// surfaces as-is.
func (r *Router) supportDialog(ctx context.Context, state *flowState) (*flowState, error) {
	if state.Answer != "" {
		return state, nil
	}
	if state.Scenario == intent.ScenarioSimpleLookup {
		// Pure retrieval; no customer-facing drafting needed.
		return state, nil
	}

	briefContext := state.Context
	for round := 0; round < r.maxRounds; round++ {
		task := supportTask(state.Scenario, briefContext)
		res, err := r.callSupport(ctx, task, state.Query, scenarioHint(state.Scenario), briefContext)
		if err != nil {
			return nil, err
		}
		state.LastSupport = &res

		if !res.RequiresContext {
			return state, nil
		}
		if !state.HasCustomerID || res.ContextType == "" {
			return state, nil
		}

		data, err := r.requestContext(ctx, res.ContextType, state.CustomerID, state.Query)
		if err != nil {
			return nil, err
		}
		briefContext = data.ContextPayload
		state.Context = briefContext
	}

	log.Warn().Str("scenario", string(state.Scenario)).Msg("support dialog hit round cap")
	return state, nil
}

// finalizeAnswer renders whatever the pipeline produced into one message.
func finalizeAnswer(state *flowState) (GraphOutput, error) {
	if state.Answer != "" {
		return GraphOutput{Answer: state.Answer}, nil
	}
	if state.Scenario == intent.ScenarioSimpleLookup {
		return GraphOutput{Answer: formatDataResponse(state.LastData)}, nil
	}
	return GraphOutput{Answer: formatSupportResponse(state.LastSupport)}, nil
}

func scenarioHint(s intent.Scenario) string {
	switch s {
	case intent.ScenarioSimpleLookup:
		return "profile_lookup"
	case intent.ScenarioUpdateEmailHistory, intent.ScenarioMultiIntent:
		return "multi_intent"
	case intent.ScenarioGeneric:
		return "general"
	default:
		return string(s)
	}
}

// supportTask states the drafting job, with extra steering for billing
// escalations depending on whether context has arrived yet.
func supportTask(s intent.Scenario, briefContext any) string {
	task := "Draft the customer-facing response for this query."
	if s != intent.ScenarioBillingEscalation {
		return task
	}
	if briefContext == nil {
		return task + " You have NOT received any billing/ticket context yet. Respond with the JSON form " +
			"requesting requires_context=true and context_type=\"billing\", explaining exactly what the router should fetch."
	}
	return task + " You now have the requested billing/ticket context. Provide the final response with " +
		"requires_context=false, acknowledging urgency, referencing ticket IDs, and outlining next steps."
}

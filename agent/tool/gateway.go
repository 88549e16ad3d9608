package tool

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"supportmesh/agent/contract"
	"supportmesh/agent/store"
)

// Gateway dispatches named operations to the backing store. Unknown names and
// missing/mistyped required arguments come back as Go errors; store failures
// are folded into the ToolResult envelope so specialists can relay them.
type Gateway struct {
	store store.Store
}

func NewGateway(s store.Store) *Gateway {
	return &Gateway{store: s}
}

func (g *Gateway) SpecsFor(agent contract.AgentType) []contract.ToolSpec {
	if agent == contract.AgentTypeSupport {
		return supportSpecs()
	}
	return dataSpecs()
}

func (g *Gateway) Invoke(ctx context.Context, name string, args map[string]any) (contract.ToolResult, error) {
	var res contract.ToolResult
	var err error

	switch name {
	case NameGetCustomer:
		res, err = g.getCustomer(ctx, args)
	case NameListCustomers:
		res, err = g.listCustomers(ctx, args)
	case NameUpdateCustomer:
		res, err = g.updateCustomer(ctx, args)
	case NameCreateTicket:
		res, err = g.createTicket(ctx, args)
	case NameCustomerHistory:
		res, err = g.customerHistory(ctx, args)
	case NameActiveOpenTickets:
		res, err = g.activeOpenTickets(ctx)
	case NameHighPriorityByIDs:
		res, err = g.highPriorityByIDs(ctx, args)
	default:
		return contract.ToolResult{}, fmt.Errorf("%w: %s", contract.ErrUnknownTool, name)
	}

	if err != nil {
		return contract.ToolResult{}, err
	}
	if !res.OK {
		log.Debug().Str("tool", name).Str("error", res.Err).Msg("tool returned store error")
	}
	return res, nil
}

func (g *Gateway) getCustomer(ctx context.Context, args map[string]any) (contract.ToolResult, error) {
	id, err := intArg(args, "customer_id", true)
	if err != nil {
		return contract.ToolResult{}, err
	}
	c, err := g.store.GetCustomer(ctx, id)
	if errors.Is(err, store.ErrCustomerNotFound) {
		return storeError(fmt.Sprintf("Customer with ID %d not found.", id)), nil
	}
	if err != nil {
		return storeError(err.Error()), nil
	}
	return contract.ToolResult{OK: true, Data: c}, nil
}

func (g *Gateway) listCustomers(ctx context.Context, args map[string]any) (contract.ToolResult, error) {
	status, err := stringArg(args, "status", false)
	if err != nil {
		return contract.ToolResult{}, err
	}
	if err := enumCheck("status", status, "", "active", "inactive"); err != nil {
		return contract.ToolResult{}, err
	}
	limit, err := intArg(args, "limit", false)
	if err != nil {
		return contract.ToolResult{}, err
	}
	if limit <= 0 {
		limit = 100
	}
	customers, err := g.store.ListCustomers(ctx, status, int(limit))
	if err != nil {
		return storeError(err.Error()), nil
	}
	if len(customers) == 0 {
		return contract.ToolResult{OK: true, Message: "No customers found matching the criteria."}, nil
	}
	return contract.ToolResult{OK: true, Data: customers}, nil
}

func (g *Gateway) updateCustomer(ctx context.Context, args map[string]any) (contract.ToolResult, error) {
	id, err := intArg(args, "customer_id", true)
	if err != nil {
		return contract.ToolResult{}, err
	}

	fields := make(map[string]string)
	for _, col := range []string{"name", "email", "phone", "status"} {
		val, err := stringArg(args, col, false)
		if err != nil {
			return contract.ToolResult{}, err
		}
		if val != "" {
			fields[col] = val
		}
	}
	if err := enumCheck("status", fields["status"], "", "active", "inactive"); err != nil {
		return contract.ToolResult{}, err
	}
	if len(fields) == 0 {
		return contract.ToolResult{}, fmt.Errorf("%w: no updatable fields provided", contract.ErrInvalidArguments)
	}

	c, err := g.store.UpdateCustomer(ctx, id, fields)
	if errors.Is(err, store.ErrCustomerNotFound) {
		return storeError(fmt.Sprintf("Customer with ID %d not found for update.", id)), nil
	}
	if err != nil {
		return storeError(err.Error()), nil
	}
	return contract.ToolResult{
		OK:      true,
		Data:    c,
		Message: fmt.Sprintf("Customer ID %d updated.", id),
	}, nil
}

func (g *Gateway) createTicket(ctx context.Context, args map[string]any) (contract.ToolResult, error) {
	id, err := intArg(args, "customer_id", true)
	if err != nil {
		return contract.ToolResult{}, err
	}
	issue, err := stringArg(args, "issue", true)
	if err != nil {
		return contract.ToolResult{}, err
	}
	priority, err := stringArg(args, "priority", true)
	if err != nil {
		return contract.ToolResult{}, err
	}
	priority = strings.ToLower(priority)
	if err := enumCheck("priority", priority, "low", "medium", "high"); err != nil {
		return contract.ToolResult{}, err
	}

	ticket, err := g.store.CreateTicket(ctx, id, issue, priority)
	if errors.Is(err, store.ErrCustomerNotFound) {
		return storeError(fmt.Sprintf("Customer ID %d may not exist.", id)), nil
	}
	if err != nil {
		return storeError(err.Error()), nil
	}
	return contract.ToolResult{
		OK:      true,
		Data:    ticket,
		Message: fmt.Sprintf("New '%s' priority ticket (ID: %d) created for customer ID %d.", priority, ticket.ID, id),
	}, nil
}

func (g *Gateway) customerHistory(ctx context.Context, args map[string]any) (contract.ToolResult, error) {
	id, err := intArg(args, "customer_id", true)
	if err != nil {
		return contract.ToolResult{}, err
	}
	status, err := stringArg(args, "status", false)
	if err != nil {
		return contract.ToolResult{}, err
	}

	tickets, err := g.store.CustomerHistory(ctx, id, status)
	if err != nil {
		return storeError(err.Error()), nil
	}
	if len(tickets) == 0 {
		return contract.ToolResult{OK: true, Message: fmt.Sprintf("No ticket history found for customer ID %d.", id)}, nil
	}
	return contract.ToolResult{OK: true, Data: tickets}, nil
}

func (g *Gateway) activeOpenTickets(ctx context.Context) (contract.ToolResult, error) {
	rows, err := g.store.ActiveCustomersWithOpenTickets(ctx)
	if err != nil {
		return storeError(err.Error()), nil
	}
	if len(rows) == 0 {
		return contract.ToolResult{OK: true, Message: "No active customers currently have open tickets."}, nil
	}
	return contract.ToolResult{OK: true, Data: rows}, nil
}

func (g *Gateway) highPriorityByIDs(ctx context.Context, args map[string]any) (contract.ToolResult, error) {
	ids, err := intSliceArg(args, "customer_ids", true)
	if err != nil {
		return contract.ToolResult{}, err
	}
	if len(ids) == 0 {
		return contract.ToolResult{OK: true, Message: "No customer IDs provided to check."}, nil
	}

	rows, err := g.store.HighPriorityTicketsByIDs(ctx, ids)
	if err != nil {
		return storeError(err.Error()), nil
	}
	if len(rows) == 0 {
		return contract.ToolResult{OK: true, Message: "No high-priority tickets found for the specified customers."}, nil
	}
	return contract.ToolResult{OK: true, Data: rows}, nil
}

func storeError(msg string) contract.ToolResult {
	return contract.ToolResult{Err: msg}
}

// intArg accepts both float64 (JSON numbers) and int forms. Fractional
// numbers are mistyped arguments, not candidates for truncation.
func intArg(args map[string]any, key string, required bool) (int64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("%w: missing required argument %q", contract.ErrInvalidArguments, key)
		}
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: argument %q must be an integer", contract.ErrInvalidArguments, key)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("%w: argument %q must be an integer", contract.ErrInvalidArguments, key)
	}
}

func stringArg(args map[string]any, key string, required bool) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%w: missing required argument %q", contract.ErrInvalidArguments, key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %q must be a string", contract.ErrInvalidArguments, key)
	}
	if required && strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: argument %q must not be empty", contract.ErrInvalidArguments, key)
	}
	return s, nil
}

func intSliceArg(args map[string]any, key string, required bool) ([]int64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return nil, fmt.Errorf("%w: missing required argument %q", contract.ErrInvalidArguments, key)
		}
		return nil, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: argument %q must be an array of integers", contract.ErrInvalidArguments, key)
	}
	out := make([]int64, 0, len(raw))
	for _, item := range raw {
		switch n := item.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("%w: argument %q must contain only integers", contract.ErrInvalidArguments, key)
			}
			out = append(out, int64(n))
		case int:
			out = append(out, int64(n))
		case int64:
			out = append(out, n)
		default:
			return nil, fmt.Errorf("%w: argument %q must contain only integers", contract.ErrInvalidArguments, key)
		}
	}
	return out, nil
}

func enumCheck(key, val string, allowed ...string) error {
	for _, a := range allowed {
		if val == a {
			return nil
		}
	}
	return fmt.Errorf("%w: argument %q must be one of %v", contract.ErrInvalidArguments, key, allowed)
}

// Package tool exposes the backing store as a closed catalog of named
// operations. Specialists never see SQL or the Store interface, only the
// catalog entries declared to their role.
package tool

import "supportmesh/agent/contract"

const (
	NameGetCustomer       = "get_customer"
	NameListCustomers     = "list_customers"
	NameUpdateCustomer    = "update_customer"
	NameCreateTicket      = "create_ticket"
	NameCustomerHistory   = "get_customer_history"
	NameActiveOpenTickets = "list_active_customers_with_open_tickets"
	NameHighPriorityByIDs = "get_high_priority_tickets_by_ids"
)

func dataSpecs() []contract.ToolSpec {
	return []contract.ToolSpec{
		{
			Name:        NameGetCustomer,
			Description: "Retrieve a customer's profile by ID.",
			Parameters: map[string]any{
				"customer_id": map[string]any{"type": "integer"},
			},
			Required: []string{"customer_id"},
		},
		{
			Name:        NameListCustomers,
			Description: "List customers optionally filtered by status.",
			Parameters: map[string]any{
				"status": map[string]any{
					"type":        "string",
					"enum":        []string{"active", "inactive"},
					"description": "Optional status filter.",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of rows to return.",
				},
			},
		},
		{
			Name:        NameUpdateCustomer,
			Description: "Update name/email/phone/status for a customer.",
			Parameters: map[string]any{
				"customer_id": map[string]any{"type": "integer"},
				"name":        map[string]any{"type": "string"},
				"email":       map[string]any{"type": "string"},
				"phone":       map[string]any{"type": "string"},
				"status": map[string]any{
					"type": "string",
					"enum": []string{"active", "inactive"},
				},
			},
			Required: []string{"customer_id"},
		},
		{
			Name:        NameCustomerHistory,
			Description: "Fetch ticket history for a customer, optionally filtered by status.",
			Parameters: map[string]any{
				"customer_id": map[string]any{"type": "integer"},
				"status": map[string]any{
					"type":        "string",
					"description": "Optional ticket status filter.",
				},
			},
			Required: []string{"customer_id"},
		},
		{
			Name:        NameActiveOpenTickets,
			Description: "List active customers who currently have open tickets.",
			Parameters:  map[string]any{},
		},
		{
			Name:        NameHighPriorityByIDs,
			Description: "Return high-priority tickets for a list of customer IDs.",
			Parameters: map[string]any{
				"customer_ids": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "integer"},
					"description": "List of customer IDs.",
				},
			},
			Required: []string{"customer_ids"},
		},
	}
}

func supportSpecs() []contract.ToolSpec {
	specs := []contract.ToolSpec{
		{
			Name:        NameCreateTicket,
			Description: "Create a support ticket for a customer.",
			Parameters: map[string]any{
				"customer_id": map[string]any{"type": "integer"},
				"issue":       map[string]any{"type": "string"},
				"priority": map[string]any{
					"type": "string",
					"enum": []string{"low", "medium", "high"},
				},
			},
			Required: []string{"customer_id", "issue", "priority"},
		},
	}
	return append(specs, dataSpecs()...)
}

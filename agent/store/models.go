// Package store holds the customer/ticket records behind the tool gateway.
// Two implementations exist: a bun-backed Postgres store for real deployments
// and a seeded in-memory store for demos and tests.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"supportmesh/agent/contract"
)

// Store-level constraint violations wrap contract.ErrBackingStore so callers
// can match either the specific failure or the whole class.
var (
	ErrCustomerNotFound = fmt.Errorf("%w: customer not found", contract.ErrBackingStore)
	ErrNoFields         = fmt.Errorf("%w: no updatable fields supplied", contract.ErrBackingStore)
)

type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull" json:"email"`
	Phone     string    `bun:"phone" json:"phone"`
	Status    string    `bun:"status,notnull,default:'active'" json:"status"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	CustomerID int64     `bun:"customer_id,notnull" json:"customer_id"`
	Issue      string    `bun:"issue,notnull" json:"issue"`
	Status     string    `bun:"status,notnull,default:'open'" json:"status"`
	Priority   string    `bun:"priority,notnull,default:'medium'" json:"priority"`
	CreatedAt  time.Time `bun:"created_at,nullzero" json:"created_at"`
}

// OpenTicketCustomer is the flat scan target for the active-customers join.
type OpenTicketCustomer struct {
	ID              int64  `bun:"id" json:"id"`
	Name            string `bun:"name" json:"name"`
	Email           string `bun:"email" json:"email"`
	OpenTicketCount int    `bun:"open_ticket_count" json:"open_ticket_count"`
}

// HighPriorityTicket is the flat scan target for the priority-report join.
type HighPriorityTicket struct {
	TicketID     int64  `bun:"ticket_id" json:"ticket_id"`
	CustomerID   int64  `bun:"customer_id" json:"customer_id"`
	CustomerName string `bun:"customer_name" json:"customer_name"`
	Issue        string `bun:"issue" json:"issue"`
	Status       string `bun:"status" json:"status"`
	Priority     string `bun:"priority" json:"priority"`
}

// Store is the persistence surface the tool gateway dispatches to. Every
// method returns data or a store-local error; the gateway decides how errors
// surface to specialists.
type Store interface {
	GetCustomer(ctx context.Context, id int64) (Customer, error)
	ListCustomers(ctx context.Context, status string, limit int) ([]Customer, error)
	UpdateCustomer(ctx context.Context, id int64, fields map[string]string) (Customer, error)
	CreateTicket(ctx context.Context, customerID int64, issue, priority string) (Ticket, error)
	CustomerHistory(ctx context.Context, customerID int64, status string) ([]Ticket, error)
	HighPriorityTicketsByIDs(ctx context.Context, ids []int64) ([]HighPriorityTicket, error)
	ActiveCustomersWithOpenTickets(ctx context.Context) ([]OpenTicketCustomer, error)
}

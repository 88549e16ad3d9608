package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-process Store. It backs the demo runner
// and tests; data does not survive the process.
type MemoryStore struct {
	mu           sync.RWMutex
	customers    map[int64]Customer
	tickets      map[int64]Ticket
	nextTicketID int64
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		customers:    make(map[int64]Customer),
		tickets:      make(map[int64]Ticket),
		nextTicketID: 1,
	}
}

// NewSeededMemory returns a MemoryStore preloaded with a small customer base
// covering the demo scenarios: an upgrade candidate, a double-charge
// complaint, and a mix of open and high-priority tickets.
func NewSeededMemory() *MemoryStore {
	s := NewMemory()
	now := time.Now()

	for _, c := range []Customer{
		{ID: 1, Name: "Alice Nguyen", Email: "alice.nguyen@example.com", Phone: "555-0101", Status: "active", UpdatedAt: now},
		{ID: 2, Name: "Bob Carter", Email: "bob.carter@example.com", Phone: "555-0102", Status: "active", UpdatedAt: now},
		{ID: 3, Name: "Carol Diaz", Email: "carol.diaz@example.com", Phone: "555-0103", Status: "active", UpdatedAt: now},
		{ID: 4, Name: "David Kim", Email: "david.kim@example.com", Phone: "555-0104", Status: "active", UpdatedAt: now},
		{ID: 5, Name: "Eve Adams", Email: "eve.adams@example.com", Phone: "555-0105", Status: "inactive", UpdatedAt: now},
	} {
		s.customers[c.ID] = c
	}

	for _, t := range []Ticket{
		{CustomerID: 1, Issue: "Cannot log in after password reset", Status: "open", Priority: "high"},
		{CustomerID: 2, Issue: "Billing statement missing for July", Status: "open", Priority: "medium"},
		{CustomerID: 3, Issue: "Requesting plan upgrade quote", Status: "open", Priority: "low"},
		{CustomerID: 4, Issue: "Charged twice for monthly subscription", Status: "open", Priority: "high"},
		{CustomerID: 4, Issue: "Refund request from last quarter", Status: "closed", Priority: "medium"},
		{CustomerID: 5, Issue: "Export of historical invoices", Status: "closed", Priority: "low"},
	} {
		t.CreatedAt = now
		t.ID = s.nextTicketID
		s.nextTicketID++
		s.tickets[t.ID] = t
	}
	return s
}

func (s *MemoryStore) GetCustomer(_ context.Context, id int64) (Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return Customer{}, ErrCustomerNotFound
	}
	return c, nil
}

func (s *MemoryStore) ListCustomers(_ context.Context, status string, limit int) ([]Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) UpdateCustomer(_ context.Context, id int64, fields map[string]string) (Customer, error) {
	if len(fields) == 0 {
		return Customer{}, ErrNoFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return Customer{}, ErrCustomerNotFound
	}
	for col, val := range fields {
		switch col {
		case "name":
			c.Name = val
		case "email":
			c.Email = val
		case "phone":
			c.Phone = val
		case "status":
			c.Status = val
		}
	}
	c.UpdatedAt = time.Now()
	s.customers[id] = c
	return c, nil
}

func (s *MemoryStore) CreateTicket(_ context.Context, customerID int64, issue, priority string) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customerID]; !ok {
		return Ticket{}, ErrCustomerNotFound
	}
	t := Ticket{
		ID:         s.nextTicketID,
		CustomerID: customerID,
		Issue:      issue,
		Status:     "open",
		Priority:   priority,
		CreatedAt:  time.Now(),
	}
	s.nextTicketID++
	s.tickets[t.ID] = t
	return t, nil
}

func (s *MemoryStore) CustomerHistory(_ context.Context, customerID int64, status string) ([]Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Ticket, 0)
	for _, t := range s.tickets {
		if t.CustomerID != customerID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) HighPriorityTicketsByIDs(_ context.Context, ids []int64) ([]HighPriorityTicket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	out := make([]HighPriorityTicket, 0)
	for _, t := range s.tickets {
		if t.Priority != "high" || !wanted[t.CustomerID] {
			continue
		}
		c, ok := s.customers[t.CustomerID]
		if !ok {
			continue
		}
		out = append(out, HighPriorityTicket{
			TicketID:     t.ID,
			CustomerID:   t.CustomerID,
			CustomerName: c.Name,
			Issue:        t.Issue,
			Status:       t.Status,
			Priority:     t.Priority,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketID < out[j].TicketID })
	return out, nil
}

func (s *MemoryStore) ActiveCustomersWithOpenTickets(_ context.Context) ([]OpenTicketCustomer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int)
	for _, t := range s.tickets {
		if t.Status == "open" {
			counts[t.CustomerID]++
		}
	}

	out := make([]OpenTicketCustomer, 0)
	for id, n := range counts {
		c, ok := s.customers[id]
		if !ok || c.Status != "active" {
			continue
		}
		out = append(out, OpenTicketCustomer{
			ID:              c.ID,
			Name:            c.Name,
			Email:           c.Email,
			OpenTicketCount: n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// PostgresStore implements Store on top of bun/pgdriver.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	var c Customer
	err := s.db.NewSelect().Model(&c).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Customer{}, ErrCustomerNotFound
	}
	if err != nil {
		return Customer{}, fmt.Errorf("get customer %d: %w", id, err)
	}
	return c, nil
}

func (s *PostgresStore) ListCustomers(ctx context.Context, status string, limit int) ([]Customer, error) {
	customers := make([]Customer, 0)
	q := s.db.NewSelect().Model(&customers).Order("id ASC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (s *PostgresStore) UpdateCustomer(ctx context.Context, id int64, fields map[string]string) (Customer, error) {
	if len(fields) == 0 {
		return Customer{}, ErrNoFields
	}

	var updated Customer
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().Model((*Customer)(nil)).Where("id = ?", id)
		for col, val := range fields {
			q = q.Set("? = ?", bun.Ident(col), val)
		}
		q = q.Set("updated_at = ?", time.Now())
		res, err := q.Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrCustomerNotFound
		}
		return tx.NewSelect().Model(&updated).Where("id = ?", id).Scan(ctx)
	})
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return Customer{}, ErrCustomerNotFound
		}
		return Customer{}, fmt.Errorf("update customer %d: %w", id, err)
	}
	return updated, nil
}

func (s *PostgresStore) CreateTicket(ctx context.Context, customerID int64, issue, priority string) (Ticket, error) {
	ticket := Ticket{
		CustomerID: customerID,
		Issue:      issue,
		Status:     "open",
		Priority:   priority,
		CreatedAt:  time.Now(),
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*Customer)(nil)).Where("id = ?", customerID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return ErrCustomerNotFound
		}
		_, err = tx.NewInsert().Model(&ticket).Exec(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return Ticket{}, ErrCustomerNotFound
		}
		return Ticket{}, fmt.Errorf("create ticket for customer %d: %w", customerID, err)
	}
	return ticket, nil
}

func (s *PostgresStore) CustomerHistory(ctx context.Context, customerID int64, status string) ([]Ticket, error) {
	tickets := make([]Ticket, 0)
	q := s.db.NewSelect().Model(&tickets).
		Where("customer_id = ?", customerID).
		Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("customer history %d: %w", customerID, err)
	}
	return tickets, nil
}

func (s *PostgresStore) HighPriorityTicketsByIDs(ctx context.Context, ids []int64) ([]HighPriorityTicket, error) {
	rows := make([]HighPriorityTicket, 0)
	err := s.db.NewSelect().
		ColumnExpr("t.id AS ticket_id").
		ColumnExpr("t.customer_id AS customer_id").
		ColumnExpr("c.name AS customer_name").
		ColumnExpr("t.issue AS issue").
		ColumnExpr("t.status AS status").
		ColumnExpr("t.priority AS priority").
		TableExpr("tickets AS t").
		Join("JOIN customers AS c ON c.id = t.customer_id").
		Where("t.priority = ?", "high").
		Where("t.customer_id IN (?)", bun.In(ids)).
		Order("t.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("high priority tickets: %w", err)
	}
	return rows, nil
}

func (s *PostgresStore) ActiveCustomersWithOpenTickets(ctx context.Context) ([]OpenTicketCustomer, error) {
	rows := make([]OpenTicketCustomer, 0)
	err := s.db.NewSelect().
		ColumnExpr("c.id AS id").
		ColumnExpr("c.name AS name").
		ColumnExpr("c.email AS email").
		ColumnExpr("COUNT(t.id) AS open_ticket_count").
		TableExpr("customers AS c").
		Join("JOIN tickets AS t ON t.customer_id = c.id").
		Where("c.status = ?", "active").
		Where("t.status = ?", "open").
		GroupExpr("c.id, c.name, c.email").
		Order("c.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("active customers with open tickets: %w", err)
	}
	return rows, nil
}

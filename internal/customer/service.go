package customer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bonison01/shop3/internal/backend"
)

const tableCustomers = "customers"

var (
	ErrNotFound    = errors.New("customer: not found")
	ErrEmailExists = errors.New("customer: email already exists")
	ErrNameMissing = errors.New("customer: name is required")
)

type Service interface {
	List(ctx context.Context) ([]Customer, error)
	GetByID(ctx context.Context, id string) (*Customer, error)
	Create(ctx context.Context, c *Customer) (*Customer, error)
}

type service struct {
	backend backend.Client
}

func NewService(client backend.Client) Service {
	return &service{backend: client}
}

func (s *service) List(ctx context.Context) ([]Customer, error) {
	rows, err := s.backend.Select(ctx, tableCustomers, backend.Filter{})
	if err != nil {
		return nil, fmt.Errorf("customer: failed to list customers: %w", err)
	}

	customers := make([]Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, rowToCustomer(row))
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].Name < customers[j].Name })
	return customers, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Customer, error) {
	rows, err := s.backend.Select(ctx, tableCustomers, backend.Filter{"id": id})
	if err != nil {
		return nil, fmt.Errorf("customer: failed to fetch customer %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	c := rowToCustomer(rows[0])
	return &c, nil
}

func (s *service) Create(ctx context.Context, c *Customer) (*Customer, error) {
	if c.Name == "" {
		return nil, ErrNameMissing
	}

	c.TotalOrders = 0
	c.TotalSpentCents = 0
	c.CreatedAt = time.Now().UTC()

	id, err := s.backend.Insert(ctx, tableCustomers, backend.Row{
		"name":              c.Name,
		"email":             c.Email,
		"phone":             c.Phone,
		"total_orders":      c.TotalOrders,
		"total_spent_cents": c.TotalSpentCents,
		"created_at":        c.CreatedAt,
	})
	if err != nil {
		if errors.Is(err, backend.ErrConflict) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Str("name", c.Name).Msg("customer: failed to create customer")
		return nil, fmt.Errorf("customer: failed to create customer: %w", err)
	}
	c.ID = id
	return c, nil
}

func rowToCustomer(row backend.Row) Customer {
	return Customer{
		ID:              row.String("id"),
		Name:            row.String("name"),
		Email:           row.String("email"),
		Phone:           row.String("phone"),
		TotalOrders:     row.Int("total_orders"),
		TotalSpentCents: row.Int("total_spent_cents"),
		CreatedAt:       row.Time("created_at"),
	}
}

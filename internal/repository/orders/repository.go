package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"

	d "github.com/joaocamilod/catalogo-online/internal/domain"
	"github.com/joaocamilod/catalogo-online/pkg/circuitbreaker"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order with this id already exists")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *d.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*d.Order, error)
	ListOrdersBySeller(ctx context.Context, sellerID string) ([]*d.Order, error)
	Ping(ctx context.Context) error
}

// Guarded puts a circuit breaker in front of order writes. Reads go straight through.
type Guarded struct {
	OrderRepository
	breaker *circuitbreaker.Breaker
}

func NewGuarded(repo OrderRepository, breaker *circuitbreaker.Breaker) *Guarded {
	return &Guarded{OrderRepository: repo, breaker: breaker}
}

func (g *Guarded) CreateOrder(ctx context.Context, order *d.Order) error {
	return g.breaker.Do(func() error {
		return g.OrderRepository.CreateOrder(ctx, order)
	})
}

// CountsAsSuccess keeps errors caused by the request itself from tripping the breaker.
func CountsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, ErrDuplicateOrder) || errors.Is(err, context.Canceled)
}

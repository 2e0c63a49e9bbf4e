package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

// DefaultCurrency is used when a request does not name one.
const DefaultCurrency = "KGS"

// StatusCompleted is the terminal status of a demo payment; there is no
// real capture step.
const StatusCompleted = "completed"

// ErrInvalid wraps request validation failures.
var ErrInvalid = errors.New("payments: invalid request")

// Payment is one recorded demo payment.
type Payment struct {
	ID         uuid.UUID `json:"id"`
	PaymentRef string    `json:"paymentRef"`
	UserID     uuid.UUID `json:"userId"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Service    string    `json:"service,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists demo payments in Postgres.
type Repository struct {
	pool PgxPool
}

func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		panic("payments: pgx pool required")
	}
	return &Repository{pool: pool}
}

const paymentColumns = `id, payment_ref, user_id, amount, currency, service, status, created_at`

// Create inserts one completed payment and returns the stored row.
func (r *Repository) Create(ctx context.Context, p *Payment) (*Payment, error) {
	query := `
		INSERT INTO payments (id, payment_ref, user_id, amount, currency, service, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + paymentColumns
	row := r.pool.QueryRow(ctx, query, uuid.New(), p.PaymentRef, p.UserID, p.Amount, p.Currency, p.Service, StatusCompleted)
	stored, err := scanPayment(row)
	if err != nil {
		return nil, fmt.Errorf("payments: create: %w", err)
	}
	return stored, nil
}

// Recent returns the newest payments, for the admin overview.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("payments: recent: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("payments: scan: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("payments: iterate: %w", err)
	}
	return out, nil
}

// Count returns the total number of payments.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM payments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("payments: count: %w", err)
	}
	return n, nil
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	if err := row.Scan(&p.ID, &p.PaymentRef, &p.UserID, &p.Amount, &p.Currency, &p.Service, &p.Status, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateRequest is a demo payment submission.
type CreateRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Service  string  `json:"service"`
}

// Service records demo payments. There is no provider integration; demo
// mode marks every payment completed immediately.
type Service struct {
	repo *Repository
	log  *logging.Logger
	now  func() time.Time
}

func NewService(repo *Repository, log *logging.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// Create validates the amount, mints a PAY-<millis> reference and stores
// the payment as completed.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*Payment, error) {
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive number", ErrInvalid)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	payment, err := s.repo.Create(ctx, &Payment{
		PaymentRef: fmt.Sprintf("PAY-%d", s.now().UnixMilli()),
		UserID:     userID,
		Amount:     req.Amount,
		Currency:   currency,
		Service:    strings.TrimSpace(req.Service),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("demo payment recorded",
		"payment_ref", payment.PaymentRef, "user_id", userID, "amount", payment.Amount, "currency", payment.Currency)
	return payment, nil
}

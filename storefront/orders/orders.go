package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/internal/logger"
)

// creates a new order repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// creates the orders table and its status type when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, querySchema); err != nil {
		return fmt.Errorf("failed to create orders schema: %w", err)
	}

	return nil
}

func (r *Repository) Create(ctx context.Context, createdBy string, req CreateOrderRequest) (*Order, error) {
	status := req.Status
	if status == "" {
		status = StatusPending
	}

	// empty customer fields reach the store as NULL and fail its NOT NULL constraints
	order, err := scanOrder(r.db.QueryRow(
		ctx,
		queryCreate,
		createdBy,
		req.TotalPrice,
		status,
		req.CustomerName,
		req.CustomerEmail,
		req.ShippingAddress,
		req.BillingAddress,
		req.IsPaid,
		req.PaidAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	logger.Info("order created", "order_id", order.ID, "created_by", createdBy)

	return order, nil
}

// returns one page of orders matching filter, newest first, plus the total count
func (r *Repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Order, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, queryCount, filter.CreatedBy, filter.Status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	rows, err := r.db.Query(ctx, queryList, filter.CreatedBy, filter.Status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	orders := []Order{}

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}

		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, nil
}

// finds an order by id. An empty createdBy skips the ownership check.
func (r *Repository) Get(ctx context.Context, id, createdBy string) (*Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, queryGet, id, createdBy))
	if err != nil {
		return nil, notFound(err)
	}

	return order, nil
}

func (r *Repository) Update(ctx context.Context, id, createdBy string, req UpdateOrderRequest) (*Order, error) {
	if req == (UpdateOrderRequest{}) {
		return nil, apperrors.BadRequest("no fields to update", nil)
	}

	order, err := scanOrder(r.db.QueryRow(
		ctx,
		queryUpdate,
		req.TotalPrice,
		req.Status,
		req.CustomerName,
		req.CustomerEmail,
		req.ShippingAddress,
		req.BillingAddress,
		req.IsPaid,
		req.PaidAt,
		id,
		createdBy,
	))
	if err != nil {
		return nil, notFound(err)
	}

	return order, nil
}

func (r *Repository) Delete(ctx context.Context, id, createdBy string) error {
	tag, err := r.db.Exec(ctx, queryDelete, id, createdBy)
	if err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order")
	}

	logger.Info("order deleted", "order_id", id)

	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order

	err := row.Scan(
		&o.ID,
		&o.CreatedBy,
		&o.TotalPrice,
		&o.Status,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.ShippingAddress,
		&o.BillingAddress,
		&o.IsPaid,
		&o.PaidAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &o, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound("order")
	}

	return fmt.Errorf("order query failed: %w", err)
}

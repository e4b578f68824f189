package orders

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// the subset of pgxpool.Pool the repository needs
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// handles order database operations
type Repository struct {
	db querier
}

type Order struct {
	ID              string     `json:"id"`
	CreatedBy       string     `json:"createdBy"`
	TotalPrice      float64    `json:"totalPrice"`
	Status          string     `json:"status"`
	CustomerName    string     `json:"customerName"`
	CustomerEmail   string     `json:"customerEmail"`
	ShippingAddress string     `json:"shippingAddress"`
	BillingAddress  string     `json:"billingAddress"`
	IsPaid          bool       `json:"isPaid"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type CreateOrderRequest struct {
	TotalPrice      float64    `json:"totalPrice" binding:"required,gt=0"`
	Status          string     `json:"status,omitempty" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	CustomerName    string     `json:"customerName"`
	CustomerEmail   string     `json:"customerEmail" binding:"omitempty,email"`
	ShippingAddress string     `json:"shippingAddress"`
	BillingAddress  string     `json:"billingAddress"`
	IsPaid          bool       `json:"isPaid"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
}

// nil fields are left untouched
type UpdateOrderRequest struct {
	TotalPrice      *float64   `json:"totalPrice,omitempty" binding:"omitempty,gt=0"`
	Status          *string    `json:"status,omitempty" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	CustomerName    *string    `json:"customerName,omitempty"`
	CustomerEmail   *string    `json:"customerEmail,omitempty" binding:"omitempty,email"`
	ShippingAddress *string    `json:"shippingAddress,omitempty"`
	BillingAddress  *string    `json:"billingAddress,omitempty"`
	IsPaid          *bool      `json:"isPaid,omitempty"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
}

// restricts List; empty fields match everything
type ListFilter struct {
	CreatedBy string
	Status    string
}

package orders

import (
	"codeberg.org/starterkit/server/api/rest/pagination"
	"codeberg.org/starterkit/server/storefront/orders"
)

// OrdersListResponse wraps a page of orders
type OrdersListResponse struct {
	Orders     []orders.Order  `json:"orders"`
	Pagination pagination.Meta `json:"pagination"`
}

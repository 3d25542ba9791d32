package domain

import "github.com/totegamma/orderdemo"

// Order is an order record. User is transient: it carries the owner as
// fetched on the current read and is never persisted.
type Order struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       float64         `json:"price"`
	User        *orderdemo.User `json:"user,omitempty"`
}

func (o Order) Validate() error {
	if o.ID <= 0 {
		return ValidationError{Field: "id", Reason: "must be positive"}
	}
	if o.UserID <= 0 {
		return ValidationError{Field: "userId", Reason: "must be positive"}
	}
	if o.ProductName == "" {
		return ValidationError{Field: "productName", Reason: "is required"}
	}
	if o.Quantity <= 0 {
		return ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if o.Price < 0 {
		return ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return nil
}

// WithUser returns a copy of the order carrying u.
func (o Order) WithUser(u orderdemo.User) Order {
	o.User = &u
	return o
}

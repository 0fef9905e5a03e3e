package priceset

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ProductNotFoundError indicates the (name, category) pair resolves to no
// source product.
type ProductNotFoundError struct {
	ProductName string
	CategoryTag string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s (category %s) not found", e.ProductName, e.CategoryTag)
}

// AlreadyComputedError indicates a price set already exists for the source
// product. Retrying will not help.
type AlreadyComputedError struct {
	SourceProductID string
	ProductName     string
}

func (e *AlreadyComputedError) Error() string {
	return fmt.Sprintf("prices already computed for %s", e.ProductName)
}

// PriceOutOfRangeError indicates a derived price exceeds what storage can
// hold. It never carries the storage error text.
type PriceOutOfRangeError struct {
	SourceProductID string
	ProductName     string
}

func (e *PriceOutOfRangeError) Error() string {
	return fmt.Sprintf("source price of %s too large to compute", e.ProductName)
}

// InvalidBasePriceError indicates a negative base price.
type InvalidBasePriceError struct {
	SourceProductID string
	BasePrice       decimal.Decimal
}

func (e *InvalidBasePriceError) Error() string {
	if e.SourceProductID == "" {
		return fmt.Sprintf("base price %s must not be negative", e.BasePrice)
	}
	return fmt.Sprintf("base price %s of product %s must not be negative", e.BasePrice, e.SourceProductID)
}

// BasePriceRangeError indicates a base price that is not a whole amount
// within what a stored price set can hold. The rejected value is not echoed.
type BasePriceRangeError struct {
	Max int64
}

func (e *BasePriceRangeError) Error() string {
	return fmt.Sprintf("base price must be a whole amount from 0 to %d", e.Max)
}

// InvalidRequestError indicates a request missing a required field.
type InvalidRequestError struct {
	Field string
}

func (e *InvalidRequestError) Error() string {
	return e.Field + " is required"
}

// ErrorKind classifies a failed price calculation.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindAlreadyComputed  ErrorKind = "already_computed"
	KindPriceOutOfRange  ErrorKind = "price_out_of_range"
	KindInvalidBasePrice ErrorKind = "invalid_base_price"
	KindInvalidRequest   ErrorKind = "invalid_request"
	KindCanceled         ErrorKind = "canceled"
	KindInternal         ErrorKind = "internal"
)

// KindOf returns the ErrorKind of err.
func KindOf(err error) ErrorKind {
	var (
		notFound *ProductNotFoundError
		computed *AlreadyComputedError
		overflow *PriceOutOfRangeError
		invalid  *InvalidBasePriceError
		badReq   *InvalidRequestError
	)
	switch {
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &computed):
		return KindAlreadyComputed
	case errors.As(err, &overflow):
		return KindPriceOutOfRange
	case errors.As(err, &invalid):
		return KindInvalidBasePrice
	case errors.As(err, &badReq):
		return KindInvalidRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}

// publicMessage returns text safe to show to callers. Internal failures are
// reduced to a generic message.
func publicMessage(kind ErrorKind, err error) string {
	switch kind {
	case KindInternal:
		return "internal error"
	case KindCanceled:
		return "request canceled"
	default:
		return err.Error()
	}
}

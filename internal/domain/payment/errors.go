package payment

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidStatus   = errors.New("invalid payment status")
	ErrStatusChanged   = errors.New("payment status was changed by another request")
)

package usecase

import (
	"errors"
	"fmt"
)

// 競合
var ErrConflict = errors.New("conflict")

// handlerがそのままstatusとmessageを返すエラー
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 注文は作れたが、その後の段階（明細・在庫・カート）で失敗した。
// 注文は消さない。order_id を返してサポートで追えるようにする。
type PartialCheckoutError struct {
	OrderID int64
	Step    string
	Err     error
}

func (e *PartialCheckoutError) Error() string {
	return fmt.Sprintf("checkout incomplete for order %d at %s: %v", e.OrderID, e.Step, e.Err)
}

func (e *PartialCheckoutError) Unwrap() error {
	return e.Err
}

func AsPartialCheckoutError(err error) (*PartialCheckoutError, bool) {
	var pe *PartialCheckoutError
	ok := errors.As(err, &pe)
	return pe, ok
}

package service

import "errors"

// Sentinel errors. The message of each is the code returned to clients.
var (
	ErrEmptyCart          = errors.New("EMPTY_CART")
	ErrItemNotFound       = errors.New("ITEM_NOT_FOUND")
	ErrItemInactive       = errors.New("ITEM_INACTIVE")
	ErrInvalidQuantity    = errors.New("QTY_INVALID")
	ErrOutOfStock         = errors.New("OUT_OF_STOCK")
	ErrCheckoutFailed     = errors.New("CHECKOUT_FAILED")
	ErrStockNotTracked    = errors.New("STOCK_NOT_TRACKED")
	ErrDeltaInvalid       = errors.New("DELTA_INVALID")
	ErrStockInvalid       = errors.New("STOCK_INVALID")
	ErrPriceInvalid       = errors.New("PRICE_INVALID")
	ErrNameRequired       = errors.New("NAME_REQUIRED")
	ErrCategoryRequired   = errors.New("CATEGORY_REQUIRED")
	ErrItemTypeInvalid    = errors.New("ITEM_TYPE_INVALID")
	ErrSKUTaken           = errors.New("SKU_TAKEN")
	ErrValidation         = errors.New("VALIDATION_FAILED")
	ErrInvalidCredentials = errors.New("BAD_CREDENTIALS")
	ErrInvalidPINFormat   = errors.New("INVALID_PIN_FORMAT")
	ErrStaffInactive      = errors.New("STAFF_INACTIVE")
	ErrStaffNotFound      = errors.New("STAFF_NOT_FOUND")
	ErrRootProtected      = errors.New("ROOT_PROTECTED")
	ErrFullNameRequired   = errors.New("FULL_NAME_REQUIRED")
	ErrRoleRequired       = errors.New("ROLE_REQUIRED")
	ErrSaleNotFound       = errors.New("SALE_NOT_FOUND")
	ErrReceiptNotFound    = errors.New("RECEIPT_NOT_FOUND")
	ErrInternal           = errors.New("INTERNAL_ERROR")
)

// ErrCheckoutTimeout is a CHECKOUT_FAILED that ran out of time.
var ErrCheckoutTimeout error = &codedError{code: "CHECKOUT_TIMEOUT", parent: ErrCheckoutFailed}

type codedError struct {
	code   string
	parent error
}

func (e *codedError) Error() string { return e.code }
func (e *codedError) Unwrap() error { return e.parent }

// ordered most specific first
var knownErrors = []error{
	ErrCheckoutTimeout,
	ErrEmptyCart,
	ErrItemNotFound,
	ErrItemInactive,
	ErrInvalidQuantity,
	ErrOutOfStock,
	ErrStockNotTracked,
	ErrDeltaInvalid,
	ErrStockInvalid,
	ErrPriceInvalid,
	ErrNameRequired,
	ErrCategoryRequired,
	ErrItemTypeInvalid,
	ErrSKUTaken,
	ErrValidation,
	ErrInvalidCredentials,
	ErrInvalidPINFormat,
	ErrStaffInactive,
	ErrStaffNotFound,
	ErrRootProtected,
	ErrFullNameRequired,
	ErrRoleRequired,
	ErrSaleNotFound,
	ErrReceiptNotFound,
	ErrCheckoutFailed,
}

// ErrorCode returns the wire code for err, or INTERNAL_ERROR when err is not
// one of the service sentinels.
func ErrorCode(err error) string {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return ErrInternal.Error()
}

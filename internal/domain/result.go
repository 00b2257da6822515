package domain

// PurchaseResult is the single completion value delivered for every purchase
// or creation attempt, success and failure alike.
type PurchaseResult int

const (
	ResultSuccess PurchaseResult = iota
	ResultNotFound
	ResultAlreadyOwned
	ResultPermissionDenied
	ResultPaymentUnavailable
	ResultInsufficientFunds
	// ResultPaymentFailed means a debit failed mid-purchase; any debit that
	// already succeeded in the same attempt has been refunded.
	ResultPaymentFailed
	// ResultDatabaseError means payment succeeded but persistence failed. The
	// payment is not refunded; the failure is logged and surfaced.
	ResultDatabaseError
	ResultValidationError
	ResultForbiddenWord
	ResultNameTooLong
	ResultTooLong
	ResultNameDuplicate
	ResultCustomDisabled
	ResultSessionExpired
)

var resultNames = map[PurchaseResult]string{
	ResultSuccess:            "success",
	ResultNotFound:           "not_found",
	ResultAlreadyOwned:       "already_owned",
	ResultPermissionDenied:   "permission_denied",
	ResultPaymentUnavailable: "payment_unavailable",
	ResultInsufficientFunds:  "insufficient_funds",
	ResultPaymentFailed:      "payment_failed",
	ResultDatabaseError:      "database_error",
	ResultValidationError:    "validation_error",
	ResultForbiddenWord:      "forbidden_word",
	ResultNameTooLong:        "name_too_long",
	ResultTooLong:            "too_long",
	ResultNameDuplicate:      "name_duplicate",
	ResultCustomDisabled:     "custom_disabled",
	ResultSessionExpired:     "session_expired",
}

func (r PurchaseResult) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "unknown"
}

func (r PurchaseResult) OK() bool {
	return r == ResultSuccess
}

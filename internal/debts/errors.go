package debts

// ValidationError reports agreement terms the simulator cannot work with.
// Callers decide whether to surface Message or fall back to a stored balance.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrInvalidFirstPaymentDate = &ValidationError{Field: "firstPaymentDate", Message: "Invalid firstPaymentDate"}
	ErrNonPositiveBalance      = &ValidationError{Field: "initialBalance", Message: "initialBalance must be > 0"}
	ErrNonPositivePayment      = &ValidationError{Field: "monthlyPayment", Message: "monthlyPayment must be > 0"}
)

package valueobjects

type PaymentStatus string

const (
	PaymentStatusCreated  PaymentStatus = "created"
	PaymentStatusCaptured PaymentStatus = "captured"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusCreated, PaymentStatusCaptured, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// CanTransitionTo allows created -> captured|failed and captured -> refunded only.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusCreated:
		return target == PaymentStatusCaptured || target == PaymentStatusFailed
	case PaymentStatusCaptured:
		return target == PaymentStatusRefunded
	default:
		return false
	}
}

func (s PaymentStatus) IsCaptured() bool {
	return s == PaymentStatusCaptured
}

func (s PaymentStatus) IsCreated() bool {
	return s == PaymentStatusCreated
}

func (s PaymentStatus) String() string {
	return string(s)
}

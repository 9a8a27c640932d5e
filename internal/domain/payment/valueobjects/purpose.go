package valueobjects

import "fmt"

// Purpose is what a checkout pays for.
type Purpose string

const (
	PurposeActivation Purpose = "activation"
	PurposeRenewal    Purpose = "renewal"
	PurposeUpgrade    Purpose = "upgrade"
)

func ParsePurpose(s string) (Purpose, error) {
	switch p := Purpose(s); p {
	case PurposeActivation, PurposeRenewal, PurposeUpgrade:
		return p, nil
	default:
		return "", fmt.Errorf("invalid payment purpose: %q", s)
	}
}

func (p Purpose) String() string {
	return string(p)
}

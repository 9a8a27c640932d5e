package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NumberGenerator produces invoice numbers of the form INV-YYYYMM-xxxxxxxx.
type NumberGenerator interface {
	Generate(at time.Time) string
}

type randomNumberGenerator struct{}

func NewNumberGenerator() NumberGenerator {
	return randomNumberGenerator{}
}

// Generate takes eight lowercase hex digits from a random v4 UUID. The
// leading 32 bits of a v4 UUID carry no version or variant bits.
func (randomNumberGenerator) Generate(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return Format(at, suffix)
}

// Format builds a number from a period month and an eight-hex suffix.
func Format(at time.Time, suffix string) string {
	at = at.UTC()
	return fmt.Sprintf("INV-%04d%02d-%s", at.Year(), int(at.Month()), suffix)
}

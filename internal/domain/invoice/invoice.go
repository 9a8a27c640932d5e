// Package invoice is the append-only record of what each captured payment billed.
package invoice

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StatusPaid is the only status an invoice is issued with.
const StatusPaid = "paid"

// DefaultTaxRate is the fixed surcharge applied to every invoice.
var DefaultTaxRate = decimal.RequireFromString("0.18")

var (
	ErrDuplicateNumber  = errors.New("invoice number already exists")
	ErrDuplicatePayment = errors.New("invoice already exists for payment")
)

type Invoice struct {
	id             uint
	number         string
	subscriptionID uint
	tenantID       uint
	paymentID      uint
	subtotal       decimal.Decimal
	tax            decimal.Decimal
	total          decimal.Decimal
	currency       string
	periodStart    time.Time
	periodEnd      time.Time
	status         string
	paidAt         time.Time
	createdAt      time.Time
}

// Amounts is the computed breakdown of an invoice in major units.
type Amounts struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeAmounts converts minor units to major and applies tax rounded to two places.
func ComputeAmounts(subtotalMinor int64, taxRate decimal.Decimal) Amounts {
	subtotal := decimal.New(subtotalMinor, -2)
	tax := subtotal.Mul(taxRate).Round(2)
	return Amounts{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

type NewInvoiceParams struct {
	Number         string
	SubscriptionID uint
	TenantID       uint
	PaymentID      uint
	SubtotalMinor  int64
	TaxRate        decimal.Decimal
	Currency       string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	PaidAt         time.Time
}

func NewInvoice(p NewInvoiceParams) (*Invoice, error) {
	if p.Number == "" {
		return nil, fmt.Errorf("invoice number is required")
	}
	if p.PaymentID == 0 {
		return nil, fmt.Errorf("payment ID is required")
	}
	if p.SubscriptionID == 0 || p.TenantID == 0 {
		return nil, fmt.Errorf("subscription and tenant are required")
	}
	if p.SubtotalMinor <= 0 {
		return nil, fmt.Errorf("subtotal must be positive")
	}
	if !p.PeriodEnd.After(p.PeriodStart) {
		return nil, fmt.Errorf("period end must be after period start")
	}

	amounts := ComputeAmounts(p.SubtotalMinor, p.TaxRate)
	return &Invoice{
		number:         p.Number,
		subscriptionID: p.SubscriptionID,
		tenantID:       p.TenantID,
		paymentID:      p.PaymentID,
		subtotal:       amounts.Subtotal,
		tax:            amounts.Tax,
		total:          amounts.Total,
		currency:       p.Currency,
		periodStart:    p.PeriodStart,
		periodEnd:      p.PeriodEnd,
		status:         StatusPaid,
		paidAt:         p.PaidAt,
		createdAt:      p.PaidAt,
	}, nil
}

// Renumber replaces the number after a uniqueness collision on insert.
func (i *Invoice) Renumber(number string) {
	i.number = number
}

func (i *Invoice) ID() uint { return i.id }
func (i *Invoice) Number() string { return i.number }
func (i *Invoice) SubscriptionID() uint { return i.subscriptionID }
func (i *Invoice) TenantID() uint { return i.tenantID }
func (i *Invoice) PaymentID() uint { return i.paymentID }
func (i *Invoice) Subtotal() decimal.Decimal { return i.subtotal }
func (i *Invoice) Tax() decimal.Decimal { return i.tax }
func (i *Invoice) Total() decimal.Decimal { return i.total }
func (i *Invoice) Currency() string { return i.currency }
func (i *Invoice) PeriodStart() time.Time { return i.periodStart }
func (i *Invoice) PeriodEnd() time.Time { return i.periodEnd }
func (i *Invoice) Status() string { return i.status }
func (i *Invoice) PaidAt() time.Time { return i.paidAt }
func (i *Invoice) CreatedAt() time.Time { return i.createdAt }

func (i *Invoice) SetID(id uint) {
	i.id = id
}

type ReconstructParams struct {
	ID             uint
	Number         string
	SubscriptionID uint
	TenantID       uint
	PaymentID      uint
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	Currency       string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	Status         string
	PaidAt         time.Time
	CreatedAt      time.Time
}

func ReconstructInvoice(p ReconstructParams) *Invoice {
	return &Invoice{
		id:             p.ID,
		number:         p.Number,
		subscriptionID: p.SubscriptionID,
		tenantID:       p.TenantID,
		paymentID:      p.PaymentID,
		subtotal:       p.Subtotal,
		tax:            p.Tax,
		total:          p.Total,
		currency:       p.Currency,
		periodStart:    p.PeriodStart,
		periodEnd:      p.PeriodEnd,
		status:         p.Status,
		paidAt:         p.PaidAt,
		createdAt:      p.CreatedAt,
	}
}

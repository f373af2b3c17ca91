package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// DemoCustomerExternalID owns every source account created on first sight.
const DemoCustomerExternalID = "demo"

type Customer struct {
	ID         uint   `gorm:"primarykey"`
	ExternalID string `gorm:"size:64;uniqueIndex"`
	Name       string
}

type Account struct {
	ID         uint   `gorm:"primarykey"`
	CustomerID uint   `gorm:"index"`
	IBAN       string `gorm:"column:iban;size:34;uniqueIndex;not null"`
}

// Transaction is the audit record of one scored payment. Alerts are the
// transactions whose action is not allow.
type Transaction struct {
	ID           uint      `gorm:"primarykey"`
	EventID      string    `gorm:"size:64;index"`
	Ts           time.Time `gorm:"not null;index"`
	SrcAccountID *uint     `gorm:"index"`
	SrcAccount   *Account  `gorm:"foreignKey:SrcAccountID"`
	DstAccountID *uint
	DstAccount   *Account       `gorm:"foreignKey:DstAccountID"`
	DstIBAN      string         `gorm:"column:dst_iban;size:34;index"`
	AmountCents  int64          `gorm:"not null"`
	Currency     string         `gorm:"size:3;not null"`
	Channel      string         `gorm:"size:16;not null"`
	FirstToPayee bool           `gorm:"column:is_first_to_payee;default:false"`
	DeviceFP     string         `gorm:"column:device_fp;size:128"`
	RiskScore    float64        `gorm:"default:0"`
	RiskReasons  pq.StringArray `gorm:"type:text[]"`
	Action       string         `gorm:"size:16;not null;default:'allow';index"`
	Signals      SignalsJSON    `gorm:"type:jsonb"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SrcIBAN returns the source account IBAN when the account was loaded.
func (t *Transaction) SrcIBAN() string {
	if t.SrcAccount == nil {
		return ""
	}
	return t.SrcAccount.IBAN
}

// DestinationIBAN prefers the IBAN as given by the customer and falls back
// to the linked account.
func (t *Transaction) DestinationIBAN() string {
	if t.DstIBAN != "" || t.DstAccount == nil {
		return t.DstIBAN
	}
	return t.DstAccount.IBAN
}

func (t *Transaction) Amount() float64 {
	return FromMinorUnits(t.AmountCents)
}

// ToMinorUnits converts an amount to cents, rounding half away from zero.
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}

func FromMinorUnits(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

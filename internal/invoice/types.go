package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice identifies the phone bill being analyzed
type Invoice struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	FilePath   string    `json:"file_path"`
	Downloaded bool      `json:"downloaded"`
}

// InvoiceGameFee is one game participation charge found on a bill.
// Fees are not deduplicated across analysis runs.
type InvoiceGameFee struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	GameID      string          `json:"game_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	PhoneNumber string          `json:"phone_number"`
}

package extractor

import (
	"time"

	"github.com/shopspring/decimal"
)

// GameType classifies how viewers take part in a game
type GameType string

const (
	GameTypeSMS       GameType = "SMS"
	GameTypePhoneCall GameType = "PHONE_CALL"
	GameTypeMixed     GameType = "MIXED"
	GameTypeWeb       GameType = "WEB"
	GameTypeOther     GameType = "OTHER"
)

// FeeKind is the channel a fee is charged on
type FeeKind string

const (
	FeeKindSMS  FeeKind = "SMS"
	FeeKindCall FeeKind = "call"
)

const (
	// DefaultRefundDeadlineDays applies when a page states no refund deadline
	DefaultRefundDeadlineDays = 60
	// MinDescriptionLength is the length under which a description is
	// considered too weak and the page is re-scanned for a longer block
	MinDescriptionLength = 50
)

// FeeEntry is one amount charged per SMS or per call
type FeeEntry struct {
	Amount decimal.Decimal `json:"amount"`
	Kind   FeeKind         `json:"kind"`
}

// GameRecord holds everything extracted from one broadcaster game page.
//
// All fields are a pure function of the source URL, the page markup and the
// channel, except AirDate when the page carries no date: it then defaults to
// the day of extraction.
type GameRecord struct {
	ID                 string          `json:"id"`
	ShowID             string          `json:"show_id,omitempty"`
	SourceURL          string          `json:"source_url"`
	Channel            string          `json:"channel"`
	Title              string          `json:"title"`
	ShowName           string          `json:"show_name"`
	AirDate            time.Time       `json:"air_date"`
	Fees               []FeeEntry      `json:"fees,omitempty"`
	Cost               decimal.Decimal `json:"cost"`
	GameType           GameType        `json:"game_type"`
	PhoneNumber        string          `json:"phone_number,omitempty"`
	RefundAddress      string          `json:"refund_address,omitempty"`
	RefundDeadlineDays int             `json:"refund_deadline_days"`
	Description        string          `json:"description,omitempty"`
}

package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"sjsage522/refundscraper/internal/extractor"
)

// Game is a catalog entry. A placeholder is a game bootstrapped from
// invoice evidence alone, known only by its phone number.
type Game struct {
	ID          string          `db:"id" json:"id"`
	PhoneNumber string          `db:"phone_number" json:"phone_number"`
	ShowName    string          `db:"show_name" json:"show_name"`
	Title       string          `db:"title" json:"title"`
	Channel     string          `db:"channel" json:"channel"`
	SourceURL   string          `db:"source_url" json:"source_url"`
	Cost        decimal.Decimal `db:"cost" json:"cost"`
	Placeholder bool            `db:"placeholder" json:"placeholder"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Catalog is the store of known games
type Catalog interface {
	// AllKnownGames returns a snapshot of every game
	AllKnownGames(ctx context.Context) ([]Game, error)

	// FindByPhoneNumber returns the games registered under a short code
	FindByPhoneNumber(ctx context.Context, number string) ([]Game, error)

	// CreatePlaceholderGame registers a game known only by its short code
	CreatePlaceholderGame(ctx context.Context, number string) (Game, error)

	// SaveGame stores a scraped game, absorbing a placeholder with the same
	// phone number
	SaveGame(ctx context.Context, record extractor.GameRecord) (Game, error)
}

// placeholderTitle names games created from invoice evidence
func placeholderTitle(number string) string {
	return "Jeu " + number
}

func fromRecord(record extractor.GameRecord) Game {
	return Game{
		ID:          record.ID,
		PhoneNumber: record.PhoneNumber,
		ShowName:    record.ShowName,
		Title:       record.Title,
		Channel:     record.Channel,
		SourceURL:   record.SourceURL,
		Cost:        record.Cost,
	}
}

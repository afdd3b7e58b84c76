package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"sjsage522/refundscraper/internal/extractor"
	"sjsage522/refundscraper/logger"
	apperrors "sjsage522/refundscraper/pkg/errors"
)

const (
	// DefaultMaxOpenConns is the default maximum number of open connections
	DefaultMaxOpenConns = 10
	// DefaultMaxIdleConns is the default maximum number of idle connections
	DefaultMaxIdleConns = 2
	// DefaultConnMaxLifetime is the default maximum connection lifetime
	DefaultConnMaxLifetime = 5 * time.Minute
	// DefaultPingTimeout is the default timeout for ping operations
	DefaultPingTimeout = 5 * time.Second
)

const uniqueViolation = "23505"

const gameColumns = `id, phone_number, show_name, title, channel, source_url, cost, placeholder, updated_at`

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id           TEXT PRIMARY KEY,
	phone_number TEXT NOT NULL DEFAULT '',
	show_name    TEXT NOT NULL DEFAULT '',
	title        TEXT NOT NULL DEFAULT '',
	channel      TEXT NOT NULL DEFAULT '',
	source_url   TEXT NOT NULL DEFAULT '',
	cost         NUMERIC(10, 2) NOT NULL DEFAULT 0,
	placeholder  BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS games_phone_number_idx ON games (phone_number);
CREATE UNIQUE INDEX IF NOT EXISTS games_placeholder_phone_idx ON games (phone_number) WHERE placeholder;
`

// PostgresCatalog stores games in a PostgreSQL table
type PostgresCatalog struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresCatalog wraps an open connection
func NewPostgresCatalog(db *sqlx.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db, log: logger.ForCatalog()}
}

// Connect opens and pings a PostgreSQL connection
func Connect(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, apperrors.NewCatalog("open database", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, apperrors.NewCatalog("ping database", err)
	}
	return db, nil
}

// EnsureSchema creates the games table when missing
func (c *PostgresCatalog) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return apperrors.NewCatalog("create schema", err)
	}
	return nil
}

func (c *PostgresCatalog) AllKnownGames(ctx context.Context) ([]Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games ORDER BY id`

	var games []Game
	if err := c.db.SelectContext(ctx, &games, query); err != nil {
		return nil, apperrors.NewCatalog("list games", err)
	}
	return games, nil
}

func (c *PostgresCatalog) FindByPhoneNumber(ctx context.Context, number string) ([]Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE phone_number = $1 ORDER BY placeholder, id`

	var games []Game
	if err := c.db.SelectContext(ctx, &games, query, number); err != nil {
		return nil, apperrors.NewCatalog(fmt.Sprintf("find games for %s", number), err)
	}
	return games, nil
}

// CreatePlaceholderGame inserts a placeholder. When another writer created one
// for the same number first, that one is returned.
func (c *PostgresCatalog) CreatePlaceholderGame(ctx context.Context, number string) (Game, error) {
	query := `
		INSERT INTO games (id, phone_number, title, cost, placeholder, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW())
		RETURNING ` + gameColumns

	var g Game
	err := c.db.GetContext(ctx, &g, query, uuid.NewString(), number, placeholderTitle(number), decimal.Zero)
	if err == nil {
		c.log.Info().Str("phone_number", number).Str("game_id", g.ID).Msg("Placeholder game created")
		return g, nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		existing := `SELECT ` + gameColumns + ` FROM games WHERE phone_number = $1 AND placeholder`
		if getErr := c.db.GetContext(ctx, &g, existing, number); getErr == nil {
			return g, nil
		}
	}
	return Game{}, apperrors.NewCatalog(fmt.Sprintf("create placeholder for %s", number), err)
}

// SaveGame upserts a scraped game. The row already holding the page's URL is
// updated in place; failing that, a placeholder with the same phone number
// takes the record so fees recorded against it stay attached.
func (c *PostgresCatalog) SaveGame(ctx context.Context, record extractor.GameRecord) (Game, error) {
	g := fromRecord(record)

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return Game{}, apperrors.NewCatalog("begin save", err)
	}
	defer tx.Rollback()

	update := `
		UPDATE games
		SET phone_number = $2, show_name = $3, title = $4, channel = $5,
			source_url = $6, cost = $7, placeholder = FALSE, updated_at = NOW()
		WHERE id = (
			SELECT id FROM games
			WHERE (source_url = $6 AND $6 <> '')
				OR (placeholder AND phone_number = $2 AND $2 <> '')
			ORDER BY placeholder
			LIMIT 1
		)
		RETURNING ` + gameColumns

	var saved Game
	err = tx.GetContext(ctx, &saved, update, g.ID, g.PhoneNumber, g.ShowName, g.Title, g.Channel, g.SourceURL, g.Cost)
	if errors.Is(err, sql.ErrNoRows) {
		insert := `
			INSERT INTO games (id, phone_number, show_name, title, channel, source_url, cost, placeholder, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NOW())
			ON CONFLICT (id) DO UPDATE
			SET phone_number = EXCLUDED.phone_number, show_name = EXCLUDED.show_name,
				title = EXCLUDED.title, channel = EXCLUDED.channel,
				source_url = EXCLUDED.source_url, cost = EXCLUDED.cost,
				placeholder = FALSE, updated_at = NOW()
			RETURNING ` + gameColumns
		err = tx.GetContext(ctx, &saved, insert, g.ID, g.PhoneNumber, g.ShowName, g.Title, g.Channel, g.SourceURL, g.Cost)
	}
	if err != nil {
		return Game{}, apperrors.NewCatalog(fmt.Sprintf("save game %s", g.SourceURL), err)
	}

	if err := tx.Commit(); err != nil {
		return Game{}, apperrors.NewCatalog("commit save", err)
	}

	c.log.Debug().Str("game_id", saved.ID).Str("source_url", g.SourceURL).Msg("Game saved")
	return saved, nil
}

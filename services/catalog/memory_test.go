package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/refundscraper/internal/extractor"
)

func TestMemoryCatalogPlaceholders(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCatalog()

	first, err := c.CreatePlaceholderGame(ctx, "71414")
	require.NoError(t, err)
	assert.True(t, first.Placeholder)
	assert.Equal(t, "71414", first.PhoneNumber)
	assert.Equal(t, "Jeu 71414", first.Title)
	assert.NotEmpty(t, first.ID)

	again, err := c.CreatePlaceholderGame(ctx, "71414")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	found, err := c.FindByPhoneNumber(ctx, "71414")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	none, err := c.FindByPhoneNumber(ctx, "3680")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryCatalogSaveGameMergesPlaceholder(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCatalog()

	placeholder, err := c.CreatePlaceholderGame(ctx, "71414")
	require.NoError(t, err)

	record := extractor.GameRecord{
		ID:          "abc",
		SourceURL:   "https://www.tf1.fr/tf1/koh-lanta/jeux/reglement",
		Channel:     "TF1",
		Title:       "Koh-Lanta",
		ShowName:    "Koh-Lanta",
		PhoneNumber: "71414",
		Cost:        decimal.RequireFromString("0.99"),
	}

	saved, err := c.SaveGame(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, placeholder.ID, saved.ID)
	assert.False(t, saved.Placeholder)
	assert.Equal(t, "Koh-Lanta", saved.Title)

	games, err := c.AllKnownGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.True(t, games[0].Cost.Equal(decimal.RequireFromString("0.99")))

	// Scraping the page again updates the merged game
	record.Title = "Koh-Lanta, la légende"
	again, err := c.SaveGame(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, placeholder.ID, again.ID)

	games, err = c.AllKnownGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Koh-Lanta, la légende", games[0].Title)
}

func TestMemoryCatalogSaveGameWithoutPhone(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCatalog(Game{ID: "p", PhoneNumber: "", Placeholder: true})

	saved, err := c.SaveGame(ctx, extractor.GameRecord{ID: "web", Title: "Jeu web"})
	require.NoError(t, err)
	assert.Equal(t, "web", saved.ID)

	games, err := c.AllKnownGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "web"}, []string{games[0].ID, games[1].ID})
}

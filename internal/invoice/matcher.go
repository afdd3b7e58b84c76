package invoice

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sjsage522/refundscraper/helpers"
	"sjsage522/refundscraper/logger"
	"sjsage522/refundscraper/services/catalog"
)

// DefaultKeywords point at game charges on French phone bills. Show names
// of the known games are searched as well.
var DefaultKeywords = []string{
	"jeu", "jeux", "concours", "vote", "sms+", "audiotel",
	"koh-lanta", "the voice", "star academy", "les 12 coups de midi",
	"qui veut gagner des millions", "danse avec les stars", "loto", "euromillions",
	// short code prefixes of premium game numbers
	"714", "716", "717", "718",
}

var (
	amountRe      = regexp.MustCompile(`(\d+[.,]\d{1,2})\s?€`)
	numberTokenRe = regexp.MustCompile(`\d+(?:[.,/:]\d+)*`)
	shortNumberRe = regexp.MustCompile(`^\d{3,5}$`)
	billDateRe    = regexp.MustCompile(`\b(\d{2}/\d{2}/(?:\d{4}|\d{2}))\b`)
)

// PlaceholderStore resolves numbers found on a bill to catalog games
type PlaceholderStore interface {
	FindByPhoneNumber(ctx context.Context, number string) ([]catalog.Game, error)
	CreatePlaceholderGame(ctx context.Context, number string) (catalog.Game, error)
}

// Matcher finds game fees in invoice text
type Matcher struct {
	games    PlaceholderStore
	keywords []keyword
	log      *logger.Logger
}

// keyword is a fallback search term with its case-insensitive pattern
type keyword struct {
	term    string
	pattern *regexp.Regexp
}

func newKeyword(term string) keyword {
	return keyword{term: term, pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term))}
}

// NewMatcher creates a matcher resolving unknown numbers through games.
// Nil keywords means DefaultKeywords.
func NewMatcher(games PlaceholderStore, keywords []string) *Matcher {
	if keywords == nil {
		keywords = DefaultKeywords
	}
	compiled := make([]keyword, 0, len(keywords))
	for _, kw := range keywords {
		compiled = append(compiled, newKeyword(kw))
	}
	return &Matcher{
		games:    games,
		keywords: compiled,
		log:      logger.ForMatcher(),
	}
}

// Match looks for each known game's phone number in text and reads the
// amount charged next to it. Only when no known number yields a fee does it
// fall back to scanning around game keywords for unregistered short codes,
// creating placeholder games for them. Finding nothing is not an error; the
// only error is a failing catalog.
func (m *Matcher) Match(ctx context.Context, text string, inv Invoice, known []catalog.Game) ([]InvoiceGameFee, error) {
	fees := m.matchKnown(text, inv, known)
	if len(fees) > 0 {
		m.log.Debug().Str("invoice_id", inv.ID).Int("fees", len(fees)).Msg("Known numbers matched")
		return fees, nil
	}

	fees, err := m.matchKeywords(ctx, text, inv, known)
	if err != nil {
		return nil, err
	}
	m.log.Debug().Str("invoice_id", inv.ID).Int("fees", len(fees)).Msg("Keyword scan finished")
	return fees, nil
}

func (m *Matcher) matchKnown(text string, inv Invoice, known []catalog.Game) []InvoiceGameFee {
	var fees []InvoiceGameFee
	for _, g := range known {
		if g.PhoneNumber == "" {
			continue
		}
		// first occurrence only
		idx := strings.Index(text, g.PhoneNumber)
		if idx < 0 {
			continue
		}
		if fee, ok := feeAt(text, idx, idx+len(g.PhoneNumber), inv); ok {
			fee.GameID = g.ID
			fee.PhoneNumber = g.PhoneNumber
			fees = append(fees, fee)
		}
	}
	return fees
}

func (m *Matcher) matchKeywords(ctx context.Context, text string, inv Invoice, known []catalog.Game) ([]InvoiceGameFee, error) {
	var fees []InvoiceGameFee
	seen := make(map[string]bool)
	// Tokens are cut from the whole text so a long number crossing the
	// window edge is never read as a short code.
	tokens := numberTokenRe.FindAllStringIndex(text, -1)

	for _, kw := range m.keywordsFor(known) {
		loc := kw.pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}

		around, offset := window(text, loc[0], loc[1], WindowRunes)
		for _, tok := range tokens {
			if tok[1] <= offset || tok[0] >= offset+len(around) {
				continue
			}
			number := text[tok[0]:tok[1]]
			if !shortNumberRe.MatchString(number) || seen[number] {
				continue
			}

			fee, ok := feeAt(text, tok[0], tok[1], inv)
			if !ok {
				continue
			}
			seen[number] = true

			game, err := m.resolve(ctx, number)
			if err != nil {
				return nil, err
			}
			fee.GameID = game.ID
			fee.PhoneNumber = number
			fees = append(fees, fee)

			m.log.Info().
				Str("invoice_id", inv.ID).
				Str("keyword", kw.term).
				Str("phone_number", number).
				Str("amount", fee.Amount.String()).
				Msg("Fee found near keyword")
		}
	}
	return fees, nil
}

// keywordsFor adds the show names of known games to the fixed keywords
func (m *Matcher) keywordsFor(known []catalog.Game) []keyword {
	keywords := append([]keyword(nil), m.keywords...)
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		seen[helpers.FoldAccents(kw.term)] = true
	}
	for _, g := range known {
		name := helpers.FoldAccents(g.ShowName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		keywords = append(keywords, newKeyword(g.ShowName))
	}
	return keywords
}

func (m *Matcher) resolve(ctx context.Context, number string) (catalog.Game, error) {
	found, err := m.games.FindByPhoneNumber(ctx, number)
	if err != nil {
		return catalog.Game{}, err
	}
	if len(found) > 0 {
		return found[0], nil
	}
	return m.games.CreatePlaceholderGame(ctx, number)
}

// feeAt reads the positive amount nearest to text[start:end] within the
// window. The fee date is the bill line's date when the window has one.
func feeAt(text string, start, end int, inv Invoice) (InvoiceGameFee, bool) {
	around, offset := window(text, start, end, WindowRunes)
	anchorStart, anchorEnd := start-offset, end-offset

	amount, ok := nearestAmount(around, anchorStart, anchorEnd)
	if !ok {
		return InvoiceGameFee{}, false
	}

	return InvoiceGameFee{
		ID:        uuid.NewString(),
		InvoiceID: inv.ID,
		Amount:    amount,
		Date:      nearestDate(around, anchorStart, anchorEnd, inv.Date),
	}, true
}

func nearestAmount(around string, anchorStart, anchorEnd int) (decimal.Decimal, bool) {
	best, bestDist := decimal.Zero, -1
	for _, m := range amountRe.FindAllStringSubmatchIndex(around, -1) {
		amount := helpers.ParseAmount(around[m[2]:m[3]])
		if !amount.IsPositive() {
			continue
		}
		if d := distance(anchorStart, anchorEnd, m[0], m[1]); bestDist < 0 || d < bestDist {
			best, bestDist = amount, d
		}
	}
	return best, bestDist >= 0
}

func nearestDate(around string, anchorStart, anchorEnd int, fallback time.Time) time.Time {
	date, bestDist := fallback, -1
	for _, m := range billDateRe.FindAllStringSubmatchIndex(around, -1) {
		raw := around[m[2]:m[3]]
		layout := "02/01/2006"
		if len(raw) == len("02/01/06") {
			layout = "02/01/06"
		}
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if d := distance(anchorStart, anchorEnd, m[0], m[1]); bestDist < 0 || d < bestDist {
			date, bestDist = t, d
		}
	}
	return date
}

package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sjsage522/refundscraper/helpers"
)

// DefaultTF1RefundAddress is used for TF1 pages that do not print a postal address
const DefaultTF1RefundAddress = "TF1 - Service Remboursement Jeux, 1 quai du Point du Jour, 92656 Boulogne-Billancourt Cedex"

// boilerplate phrases broadcasters append to game titles, longest first
var boilerplate = []string{
	"Gagnants et règlement du jeu",
	"Gagnants et règlement",
	"Règlement complet du jeu",
	"Règlement du jeu",
	"Règlement complet",
	"Modalités de remboursement",
}

var (
	boilerplateRe = func() *regexp.Regexp {
		quoted := make([]string, len(boilerplate))
		for i, phrase := range boilerplate {
			quoted[i] = regexp.QuoteMeta(phrase)
		}
		return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
	}()
	channelSuffixRe  = regexp.MustCompile(`(?i)\s*[|\-–—]\s*(?:my)?(?:tf1|m6|6play|france\s?[2-5]|france\.tv|france\s?t[ée]l[ée]visions)\s*$`)
	titleSeparatorRe = regexp.MustCompile(`^(.{2,60}?)\s*(?::|\||\s[-–—]\s)`)
)

// Game type indicators, matched on accent-folded lowercase text
var (
	smsIndicators  = []string{"sms", "texto"}
	callIndicators = []string{"appel", "audiotel", "composez", "par minute", "/min"}
	webIndicators  = []string{"internet", "site web", "en ligne", "formulaire"}
)

// PageExtractor turns one broadcaster detail page into a GameRecord
type PageExtractor struct {
	channel string
	catalog *Catalog
	now     func() time.Time
}

// Option configures a PageExtractor
type Option func(*PageExtractor)

// WithClock sets the clock used for the air date default
func WithClock(now func() time.Time) Option {
	return func(e *PageExtractor) {
		e.now = now
	}
}

// WithCatalog replaces the default rule table
func WithCatalog(c *Catalog) Option {
	return func(e *PageExtractor) {
		e.catalog = c
	}
}

// NewPageExtractor creates an extractor for pages of the given channel
func NewPageExtractor(channel string, opts ...Option) *PageExtractor {
	e := &PageExtractor{
		channel: channel,
		catalog: DefaultCatalog(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Channel returns the broadcaster this extractor is configured for
func (e *PageExtractor) Channel() string {
	return e.channel
}

// Extract never fails: every field missing from the page gets its default.
func (e *PageExtractor) Extract(sourceURL, markup string) GameRecord {
	page := NewPage(markup)

	record := GameRecord{
		ID:                 helpers.URLID(sourceURL),
		SourceURL:          sourceURL,
		Channel:            e.channel,
		Cost:               decimal.Zero,
		GameType:           GameTypeOther,
		RefundDeadlineDays: DefaultRefundDeadlineDays,
	}

	if title, ok := e.catalog.First(FieldTitle, page); ok {
		record.Title = CleanTitle(title)
	}

	record.ShowName = e.showName(page, record.Title)
	if record.ShowName != "" {
		record.ShowID = helpers.HashID(record.ShowName)
	}

	record.AirDate = e.airDate(page)

	record.Fees = e.catalog.CollectFees(page)
	record.Cost = MaxCost(record.Fees)

	record.GameType = InferGameType(page.Text())

	if phone, ok := e.catalog.First(FieldPhone, page); ok {
		record.PhoneNumber = phone
	}

	if addr, ok := e.catalog.First(FieldAddress, page); ok {
		record.RefundAddress = addr
	} else {
		record.RefundAddress = DefaultRefundAddress(e.channel)
	}

	if raw, ok := e.catalog.First(FieldDeadline, page); ok {
		if days, err := strconv.Atoi(raw); err == nil {
			record.RefundDeadlineDays = days
		}
	}

	record.Description = e.description(page)

	return record
}

// CleanTitle removes broadcaster boilerplate from a page title
func CleanTitle(title string) string {
	title = boilerplateRe.ReplaceAllString(title, "")
	title = channelSuffixRe.ReplaceAllString(title, "")
	return strings.Trim(helpers.CollapseSpaces(title), " -–—|:")
}

func (e *PageExtractor) showName(page *Page, title string) string {
	if show, ok := e.catalog.First(FieldShow, page); ok {
		return CleanTitle(show)
	}
	if m := titleSeparatorRe.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}
	return title
}

func (e *PageExtractor) airDate(page *Page) time.Time {
	if raw, ok := e.catalog.First(FieldDate, page); ok {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			return t
		}
	}
	now := e.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// description keeps the first paragraph unless it is too short to say
// anything, in which case the longest block of the page wins.
func (e *PageExtractor) description(page *Page) string {
	first, _ := e.catalog.First(FieldDescription, page)
	if helpers.RuneLen(first) >= MinDescriptionLength {
		return first
	}

	best := first
	bestLen := MinDescriptionLength
	for _, block := range helpers.Paragraphs(page.Text()) {
		if n := helpers.RuneLen(block); n > bestLen {
			best, bestLen = block, n
		}
	}
	return best
}

// MaxCost returns the most expensive fee, zero when there is none
func MaxCost(fees []FeeEntry) decimal.Decimal {
	cost := decimal.Zero
	for _, f := range fees {
		if f.Amount.GreaterThan(cost) {
			cost = f.Amount
		}
	}
	return cost
}

// InferGameType classifies a page by the participation channels it mentions
func InferGameType(text string) GameType {
	folded := helpers.FoldAccents(text)
	sms := containsAny(folded, smsIndicators)
	call := containsAny(folded, callIndicators)

	switch {
	case sms && call:
		return GameTypeMixed
	case sms:
		return GameTypeSMS
	case call:
		return GameTypePhoneCall
	case containsAny(folded, webIndicators):
		return GameTypeWeb
	default:
		return GameTypeOther
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// DefaultRefundAddress returns the address used when a page prints none
func DefaultRefundAddress(channel string) string {
	if strings.EqualFold(channel, "TF1") {
		return DefaultTF1RefundAddress
	}
	return ""
}

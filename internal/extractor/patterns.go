package extractor

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/refundscraper/helpers"
)

// Field names a single-valued field of a GameRecord
type Field string

const (
	FieldTitle       Field = "title"
	FieldShow        Field = "show"
	FieldDate        Field = "date"
	FieldPhone       Field = "phone"
	FieldAddress     Field = "address"
	FieldDeadline    Field = "deadline"
	FieldDescription Field = "description"
)

// Normalizer cleans a raw match. Returning false rejects the match, and the
// cascade moves on as if the rule had not matched.
type Normalizer func(string) (string, bool)

// Target selects what a regex rule scans
type Target int

const (
	// Markup is the raw page HTML
	Markup Target = iota
	// Text is the page rendered as plain text, one block per paragraph
	Text
)

// Page is one page under extraction. The text rendering and the goquery
// document are built on first use.
type Page struct {
	Markup string

	text     *string
	doc      *goquery.Document
	docBuilt bool
}

// NewPage wraps raw markup
func NewPage(markup string) *Page {
	return &Page{Markup: markup}
}

// Text returns the page as plain text
func (p *Page) Text() string {
	if p.text == nil {
		t := helpers.HTMLToText(p.Markup)
		p.text = &t
	}
	return *p.text
}

// Document returns the parsed page, or nil when the markup cannot be parsed
func (p *Page) Document() *goquery.Document {
	if !p.docBuilt {
		p.docBuilt = true
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Markup))
		if err == nil {
			p.doc = doc
		}
	}
	return p.doc
}

func (p *Page) source(t Target) string {
	if t == Text {
		return p.Text()
	}
	return p.Markup
}

// Rule finds one candidate value for a field
type Rule interface {
	Find(p *Page) (string, bool)
}

// RegexRule matches a compiled pattern and keeps one capture group
type RegexRule struct {
	Name      string
	Pattern   *regexp.Regexp
	Group     int
	Target    Target
	Normalize Normalizer
}

// Find returns the first match of the pattern that the normalizer accepts
func (r RegexRule) Find(p *Page) (string, bool) {
	for _, m := range r.Pattern.FindAllStringSubmatch(p.source(r.Target), -1) {
		if r.Group >= len(m) {
			continue
		}
		if v, ok := normalize(r.Normalize, m[r.Group]); ok {
			return v, true
		}
	}
	return "", false
}

// SelectorRule reads an element's text, or one of its attributes
type SelectorRule struct {
	Name      string
	Selector  string
	Attr      string
	Normalize Normalizer
}

// Find returns the first selected element whose value the normalizer accepts
func (r SelectorRule) Find(p *Page) (string, bool) {
	doc := p.Document()
	if doc == nil {
		return "", false
	}

	var value string
	var found bool
	doc.Find(r.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := s.Text()
		if r.Attr != "" {
			attr, exists := s.Attr(r.Attr)
			if !exists {
				return true
			}
			raw = attr
		}
		value, found = normalize(r.Normalize, raw)
		return !found
	})
	return value, found
}

func normalize(n Normalizer, raw string) (string, bool) {
	if n == nil {
		v := helpers.CollapseSpaces(raw)
		return v, v != ""
	}
	return n(raw)
}

// FeeRule matches amounts charged per SMS or per call. The kind comes from
// KindGroup when set, otherwise from Kind.
type FeeRule struct {
	Name        string
	Pattern     *regexp.Regexp
	AmountGroup int
	KindGroup   int
	Kind        FeeKind
}

// Catalog is the declarative table of extraction rules. Single-valued fields
// are resolved by First, in rule order; fees are collected by CollectFees
// over every rule.
type Catalog struct {
	Rules map[Field][]Rule
	Fees  []FeeRule
}

// First runs the field's rules in order and returns the first match
func (c *Catalog) First(field Field, p *Page) (string, bool) {
	for _, rule := range c.Rules[field] {
		if v, ok := rule.Find(p); ok {
			return v, true
		}
	}
	return "", false
}

// CollectFees returns every fee written on the page, in order of appearance.
// Rules overlap on purpose; an amount already claimed by an earlier rule is
// not counted twice.
func (c *Catalog) CollectFees(p *Page) []FeeEntry {
	type hit struct {
		start, end int
		entry      FeeEntry
	}

	text := p.Text()
	var hits []hit
	claimed := func(start, end int) bool {
		for _, h := range hits {
			if start < h.end && h.start < end {
				return true
			}
		}
		return false
	}

	for _, rule := range c.Fees {
		for _, idx := range rule.Pattern.FindAllStringSubmatchIndex(text, -1) {
			as, ae := idx[2*rule.AmountGroup], idx[2*rule.AmountGroup+1]
			if as < 0 || claimed(as, ae) {
				continue
			}
			amount := helpers.ParseAmount(text[as:ae])
			if !amount.IsPositive() {
				continue
			}
			kind := rule.Kind
			if rule.KindGroup > 0 && idx[2*rule.KindGroup] >= 0 {
				kind = feeKindOf(text[idx[2*rule.KindGroup]:idx[2*rule.KindGroup+1]])
			}
			hits = append(hits, hit{start: as, end: ae, entry: FeeEntry{Amount: amount, Kind: kind}})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	fees := make([]FeeEntry, 0, len(hits))
	for _, h := range hits {
		fees = append(fees, h.entry)
	}
	return fees
}

func feeKindOf(word string) FeeKind {
	if strings.HasPrefix(helpers.FoldAccents(word), "sms") {
		return FeeKindSMS
	}
	return FeeKindCall
}

const (
	feeAmount = `(\d+(?:[.,]\d{1,2})?)`
	feeEuro   = `\s?(?:€|euros?\b|eur\b)`
	numberWd  = `(?:\d{1,3}|un|une|deux|trois|quatre|six|douze)`
	shortCode = `(\d{2}\s?\d{3}|\d{3,5})`
	cityTail  = `\d{5}\s+[A-ZÀ-Ý][\p{L}'\-]+(?:[ \-][A-ZÀ-Ý][\p{L}'\-]+)*(?:\s+C[Ee][Dd][Ee][Xx](?:\s*\d{1,2})?)?`
)

// DefaultCatalog returns the rule table tuned for French broadcaster pages
func DefaultCatalog() *Catalog {
	return &Catalog{
		Rules: map[Field][]Rule{
			FieldTitle: {
				SelectorRule{Name: "h1", Selector: "h1", Normalize: nonEmpty},
				SelectorRule{Name: "og-title", Selector: `meta[property="og:title"]`, Attr: "content", Normalize: nonEmpty},
				RegexRule{Name: "title-tag", Pattern: regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`), Group: 1, Target: Markup, Normalize: strippedNonEmpty},
			},
			FieldShow: {
				SelectorRule{Name: "programme-meta", Selector: `meta[name="programme"], meta[name="program"]`, Attr: "content", Normalize: nonEmpty},
				RegexRule{Name: "quoted-show", Pattern: regexp.MustCompile(`(?i)(?:l'[ée]mission|le programme|le jeu)\s*[«"“]\s*([^»"”\n]{2,60}?)\s*[»"”]`), Group: 1, Target: Text, Normalize: nonEmpty},
			},
			FieldDate: {
				SelectorRule{Name: "published-meta", Selector: `meta[property="article:published_time"]`, Attr: "content", Normalize: isoDate},
				SelectorRule{Name: "time-datetime", Selector: "time[datetime]", Attr: "datetime", Normalize: isoDate},
				RegexRule{Name: "numeric-date", Pattern: regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`), Target: Text, Normalize: numericDate},
				RegexRule{Name: "french-date", Pattern: regexp.MustCompile(`(?i)\b\d{1,2}(?:er)?\s+(?:janvier|f[ée]vrier|mars|avril|mai|juin|juillet|ao[uû]t|septembre|octobre|novembre|d[ée]cembre)\s+\d{4}\b`), Target: Text, Normalize: frenchDate},
			},
			FieldPhone: {
				RegexRule{Name: "send-to", Pattern: regexp.MustCompile(`(?i)\b(?:envoye[zr]|envoie|tapez|texto)\b[^\n]{0,60}?\bau\s+` + shortCode + `\b`), Group: 1, Target: Text, Normalize: shortNumber},
				RegexRule{Name: "dial", Pattern: regexp.MustCompile(`(?i)\b(?:appele[zr]|composez|t[ée]l[ée]phonez)\b[^\n]{0,40}?\b(?:le|au)\s+` + shortCode + `\b`), Group: 1, Target: Text, Normalize: shortNumber},
				RegexRule{Name: "near-keyword", Pattern: regexp.MustCompile(`(?i)\b(?:sms|appel|num[ée]ro)\b[^\n\d]{0,40}?\b` + shortCode + `\b`), Group: 1, Target: Text, Normalize: shortNumber},
			},
			FieldAddress: {
				RegexRule{Name: "introduced", Pattern: regexp.MustCompile(`(?s)(?:[àaÀA] l'adresse(?: suivante)?|[Aa]dresse suivante|par courrier [àa]|[ÉéEe]crire [àa])\s*:?\s*(.{5,200}?` + cityTail + `)`), Group: 1, Target: Text, Normalize: address},
				RegexRule{Name: "street", Pattern: regexp.MustCompile(`(?s)(\d{1,4}(?:\s?(?:bis|ter))?,?\s+(?:[Rr]ue|[Aa]venue|[Bb]oulevard|[Bb]d|[Qq]uai|[Pp]lace|[Aa]ll[ée]e|[Cc]hemin|[Ii]mpasse|[Cc]ours|[Rr]oute)\b.{2,80}?` + cityTail + `)`), Group: 1, Target: Text, Normalize: address},
				RegexRule{Name: "postal-box", Pattern: regexp.MustCompile(`(?s)((?:CS|BP|TSA)\s*\d{3,6}.{0,60}?` + cityTail + `)`), Group: 1, Target: Text, Normalize: address},
			},
			FieldDeadline: {
				RegexRule{Name: "delai", Pattern: regexp.MustCompile(`(?i)d[ée]lai\s+(?:maximum\s+|maximal\s+)?(?:de|d'un\s+maximum\s+de)\s+(` + numberWd + `\s+(?:jours|mois))`), Group: 1, Target: Text, Normalize: deadlineDays},
				RegexRule{Name: "within", Pattern: regexp.MustCompile(`(?i)dans\s+les\s+(` + numberWd + `\s+(?:jours|mois))`), Group: 1, Target: Text, Normalize: deadlineDays},
				RegexRule{Name: "following", Pattern: regexp.MustCompile(`(?i)\b(` + numberWd + `\s+(?:jours|mois))\s+(?:suivant|[àa]\s+compter|apr[èe]s)`), Group: 1, Target: Text, Normalize: deadlineDays},
			},
			FieldDescription: {
				RegexRule{Name: "first-paragraph", Pattern: regexp.MustCompile(`(?is)<p(?:\s[^>]*)?>(.*?)</p>`), Group: 1, Target: Markup, Normalize: strippedNonEmpty},
				SelectorRule{Name: "meta-description", Selector: `meta[name="description"]`, Attr: "content", Normalize: nonEmpty},
				SelectorRule{Name: "og-description", Selector: `meta[property="og:description"]`, Attr: "content", Normalize: nonEmpty},
			},
		},
		Fees: []FeeRule{
			{Name: "amount-per-channel", Pattern: regexp.MustCompile(`(?i)` + feeAmount + feeEuro + `\s*(?:TTC\s*)?(?:par|/|l')\s*(sms|appel|minute|min\b|mn\b)`), AmountGroup: 1, KindGroup: 2},
			{Name: "channel-then-amount", Pattern: regexp.MustCompile(`(?i)\b(sms|appel)[^\n€\d]{0,40}?` + feeAmount + feeEuro), AmountGroup: 2, KindGroup: 1},
			{Name: "cost-of", Pattern: regexp.MustCompile(`(?i)(?:co[uû]t|prix|tarif)[^\n€\d]{0,30}?` + feeAmount + feeEuro + `\s*(?:TTC)?[^\n]{0,20}?\b(sms|appel|minute)`), AmountGroup: 1, KindGroup: 2},
		},
	}
}

func nonEmpty(s string) (string, bool) {
	v := helpers.CollapseSpaces(s)
	return v, v != ""
}

func strippedNonEmpty(s string) (string, bool) {
	v := helpers.StripTags(s)
	return v, v != ""
}

const dateLayout = "2006-01-02"

func isoDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(dateLayout) {
		return "", false
	}
	if _, err := time.Parse(dateLayout, s[:len(dateLayout)]); err != nil {
		return "", false
	}
	return s[:len(dateLayout)], true
}

func numericDate(s string) (string, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return "", false
	}
	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	year, _ := strconv.Atoi(parts[2])
	return calendarDate(year, month, day)
}

var frenchMonths = map[string]int{
	"janvier": 1, "fevrier": 2, "mars": 3, "avril": 4, "mai": 5, "juin": 6,
	"juillet": 7, "aout": 8, "septembre": 9, "octobre": 10, "novembre": 11, "decembre": 12,
}

func frenchDate(s string) (string, bool) {
	fields := strings.Fields(helpers.FoldAccents(s))
	if len(fields) != 3 {
		return "", false
	}
	day, _ := strconv.Atoi(strings.TrimSuffix(fields[0], "er"))
	year, _ := strconv.Atoi(fields[2])
	return calendarDate(year, frenchMonths[fields[1]], day)
}

// calendarDate rejects impossible dates such as 31/02
func calendarDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || year < 1900 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return t.Format(dateLayout), true
}

func shortNumber(s string) (string, bool) {
	digits := strings.Join(strings.Fields(s), "")
	if len(digits) < 3 || len(digits) > 5 {
		return "", false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return digits, true
}

func address(s string) (string, bool) {
	v := strings.Trim(helpers.CollapseSpaces(s), " ,;:-.")
	return v, len(v) >= 10
}

var numberWords = map[string]int{
	"un": 1, "une": 1, "deux": 2, "trois": 3, "quatre": 4, "six": 6, "douze": 12,
}

func deadlineDays(s string) (string, bool) {
	fields := strings.Fields(helpers.FoldAccents(s))
	if len(fields) != 2 {
		return "", false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		n = numberWords[fields[0]]
	}
	if fields[1] == "mois" {
		n *= 30
	}
	if n <= 0 || n > 365 {
		return "", false
	}
	return strconv.Itoa(n), true
}

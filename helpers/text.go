package helpers

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	tagRe        = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRunRe   = regexp.MustCompile(`[ \t\f\r\x{00A0}\x{202F}]+`)
	blankLinesRe = regexp.MustCompile(`\n\s*\n+`)
)

// blockAtoms break text flow when rendered, so they become line breaks
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Tr: true, atom.Td: true, atom.Table: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Blockquote: true, atom.Address: true,
}

var skippedAtoms = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
}

// HTMLToText renders markup as plain text: one paragraph-like block per line,
// entities decoded, script and style content dropped.
func HTMLToText(markup string) string {
	if markup == "" {
		return ""
	}

	var b strings.Builder
	z := nethtml.NewTokenizer(strings.NewReader(markup))
	skipDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case nethtml.ErrorToken:
			return tidyLines(b.String())
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedAtoms[a] && tt == nethtml.StartTagToken {
				skipDepth++
				continue
			}
			if blockAtoms[a] {
				b.WriteString("\n\n")
			}
		case nethtml.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skippedAtoms[a] {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if blockAtoms[a] {
				b.WriteString("\n\n")
			}
		case nethtml.TextToken:
			if skipDepth > 0 {
				continue
			}
			b.Write(z.Text())
		}
	}
}

// tidyLines collapses horizontal whitespace per line and keeps at most one
// blank line between blocks.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
	}
	out := blankLinesRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(out)
}

// Paragraphs splits text produced by HTMLToText into its blocks
func Paragraphs(text string) []string {
	var blocks []string
	for _, block := range strings.Split(text, "\n\n") {
		block = CollapseSpaces(block)
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// StripTags removes tags from a markup fragment and decodes entities
func StripTags(fragment string) string {
	return CollapseSpaces(html.UnescapeString(tagRe.ReplaceAllString(fragment, " ")))
}

// CollapseSpaces folds every whitespace run, newlines included, into one space
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FoldAccents lowercases s and removes diacritics, so "Règlement" and
// "reglement" compare equal.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// NormalizeDecimal turns a French or English amount ("1 234,50", "0.99") into
// a dot-separated decimal string.
func NormalizeDecimal(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.ReplaceAll(s, ",", ".")
}

// RuneLen counts characters rather than bytes
func RuneLen(s string) int {
	return len([]rune(s))
}

package invoice

import "unicode/utf8"

// WindowRunes is how far around an anchor the matcher looks, in characters
const WindowRunes = 100

// window returns the text up to n runes either side of text[start:end],
// and the byte offset of the window in text.
func window(text string, start, end, n int) (string, int) {
	from := start
	for i := 0; i < n && from > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}

	to := end
	for i := 0; i < n && to < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}

	return text[from:to], from
}

// distance between two byte spans, zero when they overlap
func distance(aStart, aEnd, bStart, bEnd int) int {
	switch {
	case bEnd <= aStart:
		return aStart - bEnd
	case bStart >= aEnd:
		return bStart - aEnd
	default:
		return 0
	}
}

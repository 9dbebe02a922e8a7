package text

import (
	"strings"
	"unicode"
)

// punctuation that makes a good place to split a long text
const breakPunct = ".!?;:,。！？、"

// Chunk splits s into pieces of at most max runes. It prefers to cut after
// punctuation, then at whitespace, and only cuts inside a word when a word is
// longer than max. Runs of whitespace are collapsed and empty pieces are
// dropped.
func Chunk(s string, max int) []string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return nil
	}
	if max <= 0 {
		return []string{s}
	}

	var chunks []string
	runes := []rune(s)
	for len(runes) > max {
		cut := splitPoint(runes[:max+1], max)
		if piece := strings.TrimSpace(string(runes[:cut])); piece != "" {
			chunks = append(chunks, piece)
		}
		runes = []rune(strings.TrimLeftFunc(string(runes[cut:]), unicode.IsSpace))
	}
	if piece := strings.TrimSpace(string(runes)); piece != "" {
		chunks = append(chunks, piece)
	}
	return chunks
}

// splitPoint returns the number of runes of window to keep in the current
// chunk. window holds max+1 runes so a space right after the limit counts.
func splitPoint(window []rune, max int) int {
	for i := max - 1; i > 0; i-- {
		if strings.ContainsRune(breakPunct, window[i]) {
			return i + 1
		}
	}
	for i := max; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i
		}
	}
	return max
}

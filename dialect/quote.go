package dialect

import (
	"regexp"
	"strings"
)

// delimClass matches a character that may act as a delimiter next to a
// quoted field: anything but a word character, a newline or a quote.
const delimClass = "[^\\pL\\pN_\\n\"'`]"

// quotePattern is one structural shape of a quoted field. delim and
// closingDelim are submatch indexes, 0 when the shape has none; when both
// are set the two delimiters must be equal.
type quotePattern struct {
	re           map[Quotechar]*regexp.Regexp
	delim        int
	closingDelim int
}

// quotePatterns are tried in order; the first shape with any match decides.
var quotePatterns = []quotePattern{
	// ,"...",
	{re: compileQuotePattern(`(%D)( ?)%Q.*?%Q(%D)`), delim: 1, closingDelim: 3},
	// "...",  at the start of a line
	{re: compileQuotePattern(`^%Q.*?%Q(%D)( ?)`), delim: 1},
	// ,"..."  at the end of a line
	{re: compileQuotePattern(`(%D)( ?)%Q.*?%Q$`), delim: 1},
	// "..."   alone on a line
	{re: compileQuotePattern(`^%Q.*?%Q$`)},
}

func compileQuotePattern(shape string) map[Quotechar]*regexp.Regexp {
	out := make(map[Quotechar]*regexp.Regexp, len(Quotechars()))
	for _, q := range Quotechars() {
		expr := strings.NewReplacer("%D", delimClass, "%Q", regexp.QuoteMeta(q.Value())).Replace(shape)
		out[q] = regexp.MustCompile("(?sm)" + expr)
	}
	return out
}

// SniffQuote detects the quote character structuring decoded text whose
// fields are separated by delim.
//
// Quoted fields are searched for in four shapes, from most to least
// specific. The quote character with the most matches in the first shape
// that matches at all is chosen. It is confirmed when a match sits next to
// delim or, failing that, when delim splits the lines consistently. Text
// without structural quotes but with a consistent delim reports
// QuoteDouble. Anything else is ErrNoDialect.
func SniffQuote(text string, delim Delimiter) (Quotechar, error) {
	for _, p := range quotePatterns {
		counts := map[Quotechar]int{}
		delimSeen := false

		for _, q := range Quotechars() {
			for _, m := range p.re[q].FindAllStringSubmatch(text, -1) {
				if p.closingDelim > 0 && m[p.delim] != m[p.closingDelim] {
					continue
				}
				counts[q]++
				if p.delim > 0 && delimiterMatches(m[p.delim], delim) {
					delimSeen = true
				}
			}
		}

		best, bestCount := QuoteNone, 0
		for _, q := range Quotechars() {
			if counts[q] > bestCount {
				best, bestCount = q, counts[q]
			}
		}
		if bestCount == 0 {
			continue
		}

		if delimSeen || consistentDelimiter(text, delim) {
			return best, nil
		}
		return QuoteNone, ErrNoDialect
	}

	if consistentDelimiter(text, delim) {
		return QuoteDouble, nil
	}
	return QuoteNone, ErrNoDialect
}

func delimiterMatches(found string, delim Delimiter) bool {
	if delim == DelimiterNone {
		return found != ""
	}
	return found == delim.Value()
}

// minConsistency is the smallest share of lines, net of outliers, that must
// agree on the delimiter frequency.
const minConsistency = 0.91

// consistentDelimiter reports whether delim occurs the same number of times
// on nearly every non-empty line. Lines are read in chunks of ten; after
// each chunk the most common per-line count (less the lines disagreeing
// with it) is compared with the number of lines seen so far.
func consistentDelimiter(text string, delim Delimiter) bool {
	if delim == DelimiterNone {
		return false
	}
	d := delim.Value()

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return false
	}

	chunk := 10
	if len(lines) < chunk {
		chunk = len(lines)
	}

	// frequency -> number of lines, plus insertion order for ties
	freq := map[int]int{}
	var order []int

	for start, iteration := 0, 1; start < len(lines); start, iteration = start+chunk, iteration+1 {
		end := start + chunk
		if end > len(lines) {
			end = len(lines)
		}
		for _, line := range lines[start:end] {
			n := strings.Count(line, d)
			if _, ok := freq[n]; !ok {
				order = append(order, n)
			}
			freq[n]++
		}

		if len(freq) == 1 && order[0] == 0 {
			continue
		}

		modeFreq, modeLines, others := 0, -1, 0
		for _, n := range order {
			if freq[n] > modeLines {
				modeFreq, modeLines = n, freq[n]
			}
		}
		for _, n := range order {
			if n != modeFreq {
				others += freq[n]
			}
		}
		agree := modeLines - others

		total := chunk * iteration
		if total > len(lines) {
			total = len(lines)
		}
		if modeFreq > 0 && agree > 0 && float64(agree)/float64(total) >= minConsistency {
			return true
		}
	}
	return false
}

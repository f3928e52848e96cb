package dialect

import "bytes"

// DefaultHeaderThreshold is the fraction of first-row columns whose type
// must differ from the second row for the first row to count as a header.
const DefaultHeaderThreshold = 0.1

// InferDelimiter returns the candidate delimiter occurring most often in
// sample. Ties, including a sample with no candidates at all, go to the
// earlier candidate, so the result is never DelimiterNone.
func InferDelimiter(sample []byte) Delimiter {
	best, bestCount := DelimiterComma, -1
	for _, d := range Delimiters() {
		if n := bytes.Count(sample, []byte(d.Value())); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// InferLineTerminator picks CRLF when it outnumbers LF plus 0.9 times CR,
// or when LF and CR are equally frequent (which covers a sample with no
// line breaks). Otherwise the most frequent terminator wins. LF and CR are
// counted inside CRLF pairs as well.
func InferLineTerminator(sample []byte) LineTerminator {
	counts := map[LineTerminator]int{}
	for _, t := range LineTerminators() {
		counts[t] = bytes.Count(sample, []byte(t.Value()))
	}

	if float64(counts[CRLF]) > float64(counts[LF])+float64(counts[CR])*0.9 {
		return CRLF
	}
	if counts[LF] == counts[CR] {
		return CRLF
	}

	best := CRLF
	for _, t := range LineTerminators() {
		if counts[t] > counts[best] {
			best = t
		}
	}
	return best
}

// HasQuotes reports whether sample contains any candidate quote character
func HasQuotes(sample []byte) bool {
	for _, q := range Quotechars() {
		if bytes.Contains(sample, []byte(q.Value())) {
			return true
		}
	}
	return false
}

// InferHeader decides whether the first row is a header. A first row with
// any typed (non-string) field, or without a row after it, is not a header.
// Otherwise the first row is a header when the share of its columns whose
// type differs from the second row exceeds threshold. A column missing from
// the second row counts as different.
func InferHeader(rows [][]string, threshold float64) Header {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return HeaderAbsent
	}

	first := rows[0]
	for _, field := range first {
		if DetectFieldType(field) != FieldString {
			return HeaderAbsent
		}
	}
	if len(rows) < 2 {
		return HeaderAbsent
	}

	second := rows[1]
	diff := 0
	for i := range first {
		// every first-row field is a string
		if i >= len(second) || DetectFieldType(second[i]) != FieldString {
			diff++
		}
	}

	return Header(float64(diff)/float64(len(first)) > threshold)
}

package filetype

import (
	"bufio"
	"bytes"
	"io"
)

const (
	// CharacteristicLines is the maximum number of lines inspected
	CharacteristicLines = 21

	// MinCharacteristicLines is the fewest lines that count as evidence
	MinCharacteristicLines = 4

	// MaxCharacteristicBytes bounds how much content is read looking for
	// lines, so binary files without newlines are not loaded whole
	MaxCharacteristicBytes = 1 << 20
)

// prefixRules are tested against the first line, in order
var prefixRules = []struct {
	prefix []byte
	typ    FileType
}{
	{[]byte("PK"), ZIP},
	{[]byte("<?xml"), XML},
	{[]byte("{"), JSON},
	{[]byte("["), JSONL},
	{[]byte("ID"), PDF},
}

// delimiterTypes maps candidate delimiter bytes of the first line to a type
var delimiterTypes = map[byte]FileType{
	',':  CSV,
	'\t': TSV,
	'|':  Pipe,
	';':  CSV,
}

// ByCharacteristics classifies the content read from r by looking at up to
// CharacteristicLines lines. Fewer than MinCharacteristicLines lines give
// Unknown. Read errors other than io.EOF are returned.
func ByCharacteristics(r io.Reader) (FileType, error) {
	lines, err := ReadLines(r, CharacteristicLines)
	if err != nil {
		return Unknown, err
	}
	return ClassifyLines(lines), nil
}

// ReadLines reads at most max lines split on '\n', terminators included,
// from the first MaxCharacteristicBytes bytes of r. A final line without
// terminator counts as a line.
func ReadLines(r io.Reader, max int) ([][]byte, error) {
	br := bufio.NewReader(io.LimitReader(r, MaxCharacteristicBytes))

	var lines [][]byte
	for len(lines) < max {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			lines = append(lines, line)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// ClassifyLines applies the content heuristics to already-read lines
func ClassifyLines(lines [][]byte) FileType {
	if len(lines) < MinCharacteristicLines {
		return Unknown
	}

	first := lines[0]
	for _, rule := range prefixRules {
		if bytes.HasPrefix(first, rule.prefix) {
			return rule.typ
		}
	}

	if delim, n := dominantDelimiter(first); n > 1 {
		return delimiterTypes[delim]
	}

	width := len(first)
	for _, line := range lines[1:] {
		if len(line) != width {
			return Unknown
		}
	}
	return FixedWidth
}

// dominantDelimiter returns the most frequent candidate delimiter in line
// and its count. Ties go to the delimiter that appears first in line.
func dominantDelimiter(line []byte) (byte, int) {
	counts := make(map[byte]int, len(delimiterTypes))
	var order []byte
	for _, c := range line {
		if _, ok := delimiterTypes[c]; !ok {
			continue
		}
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}

	var best byte
	bestCount := 0
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best, bestCount
}

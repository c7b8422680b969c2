package loaders

import (
	"bufio"
	"io"
	"strconv"

	"github.com/hxa7241/minilight-go/pkg/core"
)

// tokenizer splits the remainder of a model file into whitespace-
// separated tokens, treating '(' and ')' as token boundaries rather than
// part of a number, so parenthesized triples may carry arbitrary
// internal whitespace.
type tokenizer struct {
	scanner *bufio.Scanner
}

func newTokenizer(r io.Reader) *tokenizer {
	s := bufio.NewScanner(r)
	s.Split(scanModelTokens)
	return &tokenizer{scanner: s}
}

func scanModelTokens(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for ; start < len(data); start++ {
		c := data[start]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			continue
		}
		break
	}
	if start == len(data) {
		if atEOF {
			return len(data), nil, nil
		}
		return start, nil, nil
	}

	if data[start] == '(' || data[start] == ')' {
		return start + 1, data[start : start+1], nil
	}

	end := start
	for end < len(data) {
		c := data[end]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '(' || c == ')' {
			break
		}
		end++
	}
	if end == len(data) && !atEOF {
		return start, nil, nil // need more data to find the token's end
	}
	return end, data[start:end], nil
}

// next returns the next non-paren token, or ok=false at EOF.
func (t *tokenizer) next() (string, bool) {
	for t.scanner.Scan() {
		tok := t.scanner.Text()
		if tok == "(" || tok == ")" {
			continue
		}
		return tok, true
	}
	return "", false
}

func (t *tokenizer) nextInt(field string) (int, error) {
	tok, ok := t.next()
	if !ok {
		return 0, formatErr("unexpected end of file reading %s", field)
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, formatErr("invalid %s %q: %v", field, tok, err)
	}
	return v, nil
}

func (t *tokenizer) nextFloat(field string) (float64, error) {
	tok, ok := t.next()
	if !ok {
		return 0, formatErr("unexpected end of file reading %s", field)
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, formatErr("invalid %s %q: %v", field, tok, err)
	}
	return v, nil
}

func (t *tokenizer) nextVec3(field string) (core.Vec3, error) {
	v, ok, err := t.tryVec3()
	if err != nil {
		return core.Vec3{}, err
	}
	if !ok {
		return core.Vec3{}, formatErr("unexpected end of file reading %s", field)
	}
	return v, nil
}

// tryVec3 reads a Vec3 if more tokens remain, returning ok=false at a
// clean EOF (used to detect the end of the triangle list).
func (t *tokenizer) tryVec3() (core.Vec3, bool, error) {
	xTok, ok := t.next()
	if !ok {
		return core.Vec3{}, false, nil
	}
	x, err := strconv.ParseFloat(xTok, 64)
	if err != nil {
		return core.Vec3{}, false, formatErr("invalid vector component %q: %v", xTok, err)
	}

	y, err := t.nextFloat("vector component")
	if err != nil {
		return core.Vec3{}, false, err
	}
	z, err := t.nextFloat("vector component")
	if err != nil {
		return core.Vec3{}, false, err
	}

	return core.NewVec3(x, y, z), true, nil
}

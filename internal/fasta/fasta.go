package fasta

// Package fasta contains minimal helpers to parse FASTA formatted data used
// by the project. It intentionally keeps parsing simple and conservative.

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrInvalidText reports input that is not valid UTF-8 text.
var ErrInvalidText = errors.New("fasta: input is not valid UTF-8")

// Parse reads FASTA text from r and returns a map from record id to its
// concatenated sequence. A line beginning with '>' starts a new record whose
// id is the remainder of that line; subsequent lines are stripped of
// surrounding whitespace and appended with no separator. Text with no '>'
// line yields an empty map, and lines before the first header are dropped.
//
// Duplicate ids resolve last-write-wins: the later record's sequence
// silently replaces the earlier one.
func Parse(r io.Reader) (map[string]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	seqs := make(map[string]string)
	var id string
	var seq strings.Builder
	started := false
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("%w (line %d)", ErrInvalidText, lineNo)
		}
		if strings.HasPrefix(line, ">") {
			if started {
				seqs[id] = seq.String()
				seq.Reset()
			}
			id = line[1:]
			started = true
		} else if started {
			seq.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("fasta: scan: %w", err)
	}
	if started {
		seqs[id] = seq.String()
	}
	return seqs, nil
}

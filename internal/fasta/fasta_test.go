package fasta

import (
	"errors"
	"strings"
	"testing"
)

func TestParseSimple(t *testing.T) {
	input := ">seq1\nATGC\n>seq2 desc\nGGTT\n"
	seqs, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seqs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(seqs))
	}
	if seqs["seq1"] != "ATGC" {
		t.Fatalf("unexpected seq1: %q", seqs["seq1"])
	}
	if seqs["seq2 desc"] != "GGTT" {
		t.Fatalf("unexpected seq2: %q", seqs["seq2 desc"])
	}
}

func TestParseMultilineSequence(t *testing.T) {
	input := ">acc1 some description\nATGC\n  ggtt  \nAA\n"
	seqs, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := seqs["acc1 some description"]; got != "ATGCggttAA" {
		t.Fatalf("expected concatenated stripped lines, got %q", got)
	}
}

func TestParseNoHeader(t *testing.T) {
	seqs, err := Parse(strings.NewReader("ATGC\nGGTT\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seqs) != 0 {
		t.Fatalf("expected empty map for headerless input, got %v", seqs)
	}
}

func TestParseDuplicateIDLastWins(t *testing.T) {
	input := ">dup\nAAAA\n>dup\nCCCC\n"
	seqs, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seqs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(seqs))
	}
	if seqs["dup"] != "CCCC" {
		t.Fatalf("expected later record to win, got %q", seqs["dup"])
	}
}

func TestParseLastRecordWithoutTrailingNewline(t *testing.T) {
	input := ">a\nATGC\n>b\nGGTT"
	seqs, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seqs["b"] != "GGTT" {
		t.Fatalf("expected last record parsed, got %q", seqs["b"])
	}
}

func TestParseRoundTrip(t *testing.T) {
	want := map[string]string{
		"NM_000518.5":   "ATGGTGCA",
		"NC_000913.3":   "GGCC",
		"NR_046018.1 x": "TTTT",
	}
	var b strings.Builder
	for id, bases := range want {
		b.WriteString(">" + id + "\n" + bases + "\n")
	}
	got, err := Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for id, bases := range want {
		if got[id] != bases {
			t.Fatalf("record %q: expected %q, got %q", id, bases, got[id])
		}
	}
}

func TestParseInvalidUTF8(t *testing.T) {
	input := ">ok\nATGC\n>bad\xff\nGGTT\n"
	_, err := Parse(strings.NewReader(input))
	if err == nil {
		t.Fatalf("expected error for invalid UTF-8 input")
	}
	if !errors.Is(err, ErrInvalidText) {
		t.Fatalf("expected ErrInvalidText, got %v", err)
	}
}

package progress

import (
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"testing/iotest"
)

func TestLinesSplitsOnCarriageReturns(t *testing.T) {
	input := "Input #0, mov\r\n  Duration: 00:00:10.00\nframe=1 time=00:00:01.00\rframe=2 time=00:00:02.00\rtrailing"
	got := slices.Collect(Lines(strings.NewReader(input)))
	want := []string{
		"Input #0, mov",
		"  Duration: 00:00:10.00",
		"frame=1 time=00:00:01.00",
		"frame=2 time=00:00:02.00",
		"trailing",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected lines:\n got %q\nwant %q", got, want)
	}
}

func TestLinesIsNotRestartable(t *testing.T) {
	seq := Lines(strings.NewReader("a\nb\n"))
	if first := slices.Collect(seq); len(first) != 2 {
		t.Fatalf("expected two lines, got %q", first)
	}
	if second := slices.Collect(seq); len(second) != 0 {
		t.Fatalf("expected exhausted sequence, got %q", second)
	}
}

func TestLinesStopsEarly(t *testing.T) {
	var seen []string
	for line := range Lines(strings.NewReader("one\ntwo\nthree\n")) {
		seen = append(seen, line)
		if line == "two" {
			break
		}
	}
	if !slices.Equal(seen, []string{"one", "two"}) {
		t.Fatalf("unexpected lines: %q", seen)
	}
}

func TestLinesEndsOnReadError(t *testing.T) {
	r := io.MultiReader(strings.NewReader("first\nsecond\n"), iotest.ErrReader(errors.New("boom")))
	got := slices.Collect(Lines(iotest.OneByteReader(r)))
	if !slices.Equal(got, []string{"first", "second"}) {
		t.Fatalf("unexpected lines before error: %q", got)
	}
}

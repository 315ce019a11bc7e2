package progress

import (
	"bufio"
	"bytes"
	"io"
	"iter"
	"sync/atomic"
)

const maxLineBytes = 1 << 20

// Lines returns a lazy sequence of the non-empty lines in r. Lines end at
// \n, \r, or \r\n. The sequence is finite and can be ranged over once; later
// iterations yield nothing. A read error ends the sequence.
func Lines(r io.Reader) iter.Seq[string] {
	var used atomic.Bool
	return func(yield func(string) bool) {
		if !used.CompareAndSwap(false, true) {
			return
		}
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		scanner.Split(scanCRLF)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

func scanCRLF(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

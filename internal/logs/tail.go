package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const defaultPoll = 250 * time.Millisecond

// Last returns up to n trailing lines of path together with the offset of
// the end of the last complete line. A missing file yields no lines and
// offset zero.
func Last(path string, n int) ([]string, int64, error) {
	file, err := open(path)
	if file == nil || err != nil {
		return nil, 0, err
	}
	defer file.Close()

	if n <= 0 {
		_, offset, err := readComplete(file, nil)
		return nil, offset, err
	}

	ring := make([]string, 0, n)
	next := 0
	_, offset, err := readComplete(file, func(line string) {
		if len(ring) < n {
			ring = append(ring, line)
			return
		}
		ring[next] = line
		next = (next + 1) % n
	})
	if err != nil {
		return nil, 0, err
	}
	lines := make([]string, 0, len(ring))
	lines = append(lines, ring[next:]...)
	lines = append(lines, ring[:next]...)
	return lines, offset, nil
}

// Follow calls emit for every complete line appended to path after offset,
// polling every poll interval until ctx is done. It returns ctx.Err().
func Follow(ctx context.Context, path string, offset int64, poll time.Duration, emit func(string)) error {
	if poll <= 0 {
		poll = defaultPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, emit)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, emit func(string)) (int64, error) {
	file, err := open(path)
	if file == nil || err != nil {
		return 0, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < offset {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	consumed, _, err := readComplete(file, emit)
	if err != nil {
		return offset, err
	}
	return offset + consumed, nil
}

// readComplete reads newline-terminated lines from r. A trailing partial
// line is left unconsumed so a writer mid-line is picked up on the next poll.
// It returns the bytes consumed and the resulting file offset.
func readComplete(file *os.File, emit func(string)) (int64, int64, error) {
	start, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, 0, fmt.Errorf("determine log offset: %w", err)
	}
	reader := bufio.NewReaderSize(file, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return consumed, start + consumed, nil
			}
			return consumed, start + consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		if emit != nil {
			emit(strings.TrimRight(line, "\r\n"))
		}
	}
}

func open(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("log path %q is a directory", path)
	}
	return file, nil
}

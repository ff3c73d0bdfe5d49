// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package section isolates the second-order perturbation table from a raw
// NBO report. The table starts after a header line containing "SECOND",
// its data rows start after a sub-header containing "within", and it ends at
// a line containing "Summary". Marker lines are never part of the block.
package section

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	startMarker  = "SECOND"
	withinMarker = "within"
	endMarker    = "Summary"
)

// maxLineSize bounds a single report line. NBO lines are short; the limit only
// guards against binary input.
const maxLineSize = 1 << 20

// State is the extractor position within the report.
type State int

const (
	SeekingStart State = iota
	SeekingWithin
	Collecting
	Done
)

func (s State) String() string {
	switch s {
	case SeekingStart:
		return "seeking-start"
	case SeekingWithin:
		return "seeking-within"
	case Collecting:
		return "collecting"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Block is the isolated table. Lines keep their original text without the
// line terminator.
type Block struct {
	Lines []string

	// State is where the extractor stopped. Collecting means the end marker
	// was missing and the block runs to end of input.
	State State
}

// Found reports whether the data rows of the table were reached.
func (b Block) Found() bool {
	return b.State == Collecting || b.State == Done
}

// String joins the block lines, each terminated by a newline.
func (b Block) String() string {
	var sb strings.Builder
	for _, l := range b.Lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Extract scans r and returns the table block. A report without the
// markers yields an empty block and no error; only read failures are errors.
func Extract(r io.Reader) (Block, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var b Block
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		switch b.State {
		case SeekingStart:
			if strings.Contains(line, startMarker) {
				b.State = SeekingWithin
			}
		case SeekingWithin:
			if strings.Contains(line, withinMarker) {
				b.State = Collecting
			}
		case Collecting:
			if strings.Contains(line, endMarker) {
				b.State = Done
				return b, nil
			}
			b.Lines = append(b.Lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return b, fmt.Errorf("reading report: %w", err)
	}
	return b, nil
}

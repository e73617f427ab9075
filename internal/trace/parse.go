// Package trace reads allocation trace files and replays them against an
// allocator.
//
// A trace has one operation per line:
//
//	a <id> <size>   allocate size bytes and call the result id
//	r <id> <size>   resize id to size bytes
//	f <id>          free id
//
// Blank lines and lines starting with # are ignored. Ids are non-negative
// integers; an id can be allocated again after it has been freed.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrSyntax indicates a malformed trace line.
	ErrSyntax = errors.New("trace: syntax error")

	// ErrUnknownID indicates a free or resize of an id that is not live.
	ErrUnknownID = errors.New("trace: unknown id")

	// ErrLiveID indicates an allocation reusing an id that is still live.
	ErrLiveID = errors.New("trace: id already live")
)

// Kind is an operation type.
type Kind byte

const (
	// Alloc is an "a <id> <size>" line.
	Alloc Kind = 'a'
	// Free is an "f <id>" line.
	Free Kind = 'f'
	// Realloc is an "r <id> <size>" line.
	Realloc Kind = 'r'
)

func (k Kind) String() string {
	switch k {
	case Alloc:
		return "alloc"
	case Free:
		return "free"
	case Realloc:
		return "realloc"
	default:
		return fmt.Sprintf("Kind(%q)", byte(k))
	}
}

// Op is one trace operation.
type Op struct {
	Kind Kind
	ID   int
	Size int // unused for Free
	Line int
}

// Trace is a parsed trace file.
type Trace struct {
	Ops []Op

	// IDs is one more than the largest id used.
	IDs int
}

// Parse reads a trace. Errors carry the offending line number.
func Parse(r io.Reader) (*Trace, error) {
	tr := &Trace{}
	live := make(map[int]bool)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		op, err := parseOp(strings.Fields(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		op.Line = line

		switch op.Kind {
		case Alloc:
			if live[op.ID] {
				return nil, fmt.Errorf("line %d: %w: %d", line, ErrLiveID, op.ID)
			}
			live[op.ID] = true
		case Free, Realloc:
			if !live[op.ID] {
				return nil, fmt.Errorf("line %d: %w: %d", line, ErrUnknownID, op.ID)
			}
			if op.Kind == Free {
				delete(live, op.ID)
			}
		}

		tr.Ops = append(tr.Ops, op)
		tr.IDs = max(tr.IDs, op.ID+1)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("trace: read: %w", err)
	}
	return tr, nil
}

func parseOp(fields []string) (Op, error) {
	if len(fields[0]) != 1 {
		return Op{}, fmt.Errorf("%w: unknown operation %q", ErrSyntax, fields[0])
	}
	op := Op{Kind: Kind(fields[0][0])}

	want := 3
	switch op.Kind {
	case Alloc, Realloc:
	case Free:
		want = 2
	default:
		return Op{}, fmt.Errorf("%w: unknown operation %q", ErrSyntax, fields[0])
	}
	if len(fields) != want {
		return Op{}, fmt.Errorf("%w: %s takes %d fields, got %d", ErrSyntax, op.Kind, want, len(fields))
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 {
		return Op{}, fmt.Errorf("%w: bad id %q", ErrSyntax, fields[1])
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.Atoi(fields[2])
		if err != nil || size < 0 {
			return Op{}, fmt.Errorf("%w: bad size %q", ErrSyntax, fields[2])
		}
		op.Size = size
	}
	return op, nil
}

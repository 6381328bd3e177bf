package destination

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	cberrors "github.com/carrybak/carrybak/internal/errors"
)

// Selector chooses one destination from the candidates. Reader and writer
// are injectable so tests never touch the terminal.
type Selector struct {
	reader io.Reader
	writer io.Writer
}

// NewSelector creates a Selector over the given IO streams.
func NewSelector(r io.Reader, w io.Writer) *Selector {
	return &Selector{reader: r, writer: w}
}

// Select picks a destination. Zero candidates fail fast. A single candidate
// is selected without prompting. Multiple candidates are offered as a
// 1-indexed list; an out-of-range or non-numeric choice fails immediately
// rather than re-prompting, so callers needing a retry must re-invoke.
func (s *Selector) Select(dests []Destination) (Destination, error) {
	if len(dests) == 0 {
		return Destination{}, errors.Wrap(cberrors.ErrNoDestination,
			"no external mounted devices found")
	}

	if len(dests) == 1 {
		fmt.Fprintf(s.writer, "Using the only available destination: %s\n", dests[0].Path)
		return dests[0], nil
	}

	fmt.Fprintln(s.writer, "Mounted destinations:")
	for i, d := range dests {
		fmt.Fprintf(s.writer, "  [%d] %s\n", i+1, d.Path)
	}
	fmt.Fprint(s.writer, "Select destination number: ")

	line, err := bufio.NewReader(s.reader).ReadString('\n')
	if err != nil && err != io.EOF {
		return Destination{}, errors.Wrap(err, "reading selection")
	}

	choice := strings.TrimSpace(line)
	index, err := strconv.Atoi(choice)
	if err != nil {
		return Destination{}, errors.Wrapf(cberrors.ErrInvalidSelection, "%q", choice)
	}
	if index < 1 || index > len(dests) {
		return Destination{}, errors.Wrapf(cberrors.ErrInvalidSelection, "%d", index)
	}
	return dests[index-1], nil
}

// Preselect matches a pre-chosen path against the candidates, for
// non-interactive invocations (--dest).
func Preselect(dests []Destination, path string) (Destination, error) {
	for _, d := range dests {
		if d.Path == path {
			return d, nil
		}
	}
	return Destination{}, errors.Wrapf(cberrors.ErrNoDestination,
		"%s is not a mounted safe destination", path)
}

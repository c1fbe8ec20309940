// Package sim is the interactive console opened by the --sim flag: each line
// of input is scanned with the generated lexer DFA and parsed with the
// generated table, with every shift and reduce echoed back. It exists so a
// grammar author can poke at the tables without generating and compiling a
// target-language parser first.
package sim

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// LineReader reads one line of console input at a time.
type LineReader interface {
	ReadLine() (string, error)
	Close() error
}

// DirectLineReader reads lines from any generic input stream directly. It can
// be used with any io.Reader but does not sanitize the input of control and
// escape sequences.
type DirectLineReader struct {
	r *bufio.Reader
}

// InteractiveLineReader reads lines from stdin using a go implementation of
// the GNU Readline library. This keeps input clear of all typing and editing
// escape sequences and enables the use of input history. This should in
// general only be used when directly connected to a TTY.
type InteractiveLineReader struct {
	rl *readline.Instance
}

// NewDirectReader creates a DirectLineReader with a buffered reader on the
// provided stream.
func NewDirectReader(r io.Reader) *DirectLineReader {
	return &DirectLineReader{r: bufio.NewReader(r)}
}

// NewInteractiveReader creates an InteractiveLineReader and initializes
// readline. The returned reader must have Close() called on it before
// disposal to properly teardown readline resources.
func NewInteractiveReader() (*InteractiveLineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "esox> ",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveLineReader{rl: rl}, nil
}

// Close cleans up resources associated with the DirectLineReader.
func (dlr *DirectLineReader) Close() error {
	// nothing to release; here so both readers can be treated uniformly
	return nil
}

// Close cleans up readline resources associated with the
// InteractiveLineReader.
func (ilr *InteractiveLineReader) Close() error {
	return ilr.rl.Close()
}

// ReadLine reads the next non-blank line. If at end of input, the returned
// string will be empty and error will be io.EOF.
func (dlr *DirectLineReader) ReadLine() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = dlr.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)
	}

	return line, nil
}

// ReadLine reads the next non-blank line. If at end of input, the returned
// string will be empty and error will be io.EOF.
func (ilr *InteractiveLineReader) ReadLine() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = ilr.rl.Readline()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)
	}

	return line, nil
}

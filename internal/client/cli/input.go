package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// interactive reports whether stdin is a terminal. Prompts are only printed
// for people, not for piped scripts.
func interactive() bool {
	return isTerminal(int(os.Stdin.Fd()))
}

// readLine optionally prints a prompt to w and reads the next line from sc.
func readLine(sc *bufio.Scanner, prompt string, w io.Writer, show bool) (string, error) {
	if show {
		if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
			return "", err
		}
	}
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(sc.Text()), nil
}

// newScanner returns a line scanner large enough for pasted tokens.
func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return sc
}

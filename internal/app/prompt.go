package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadSecret prints prompt to stderr and reads a line from stdin without
// echo when stdin is a terminal.
func ReadSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return string(b), nil
	}
	return readLine(stdin)
}

// Prompt prints prompt to stderr and reads one line from stdin.
func Prompt(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	return readLine(stdin)
}

// stdin is shared so buffered input survives between prompts.
var stdin = bufio.NewReader(os.Stdin)

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Passphrase returns the age store passphrase from DMS_PASSPHRASE, or
// prompts for it.
func Passphrase() (string, error) {
	if p := os.Getenv("DMS_PASSPHRASE"); p != "" {
		return p, nil
	}
	p, err := ReadSecret("Session passphrase: ")
	if err != nil {
		return "", err
	}
	if p == "" {
		return "", errors.New("empty passphrase")
	}
	return p, nil
}

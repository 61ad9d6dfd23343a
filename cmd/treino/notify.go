package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// promptNotifier shows alerts inline and asks confirmations on the same
// input the REPL reads from.
type promptNotifier struct {
	in  *bufio.Scanner
	out io.Writer
}

func (n *promptNotifier) Alert(msg string) {
	fmt.Fprintln(n.out, "!", msg)
}

func (n *promptNotifier) Confirm(prompt string) bool {
	fmt.Fprintf(n.out, "%s [s/N] ", prompt)
	if !n.in.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(n.in.Text())) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}

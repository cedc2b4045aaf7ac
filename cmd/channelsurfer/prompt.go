package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// prompter reads answers line by line from the command input. Lines are read
// on a background goroutine so a pending question can be abandoned when the
// command context ends.
type prompter struct {
	out   io.Writer
	lines chan string
	err   error
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{out: out, lines: make(chan string)}
	go p.read(in)
	return p
}

func (p *prompter) read(in io.Reader) {
	defer close(p.lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		p.lines <- scanner.Text()
	}
	p.err = scanner.Err()
}

// ask prints question and returns the trimmed answer. io.EOF is returned
// once the input is exhausted.
func (p *prompter) ask(ctx context.Context, question string) (string, error) {
	if question != "" {
		fmt.Fprint(p.out, question)
	}
	select {
	case line, ok := <-p.lines:
		if !ok {
			if p.err != nil {
				return "", p.err
			}
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *prompter) confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.ask(ctx, question+" (y/n) ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

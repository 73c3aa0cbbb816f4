package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// promptPicker asks for paths on the terminal. An empty answer cancels,
// except for SaveFile where it accepts the suggested path.
type promptPicker struct {
	in     *bufio.Reader
	out    io.Writer
	file   string
	folder string
}

func newPromptPicker(in io.Reader, out io.Writer) *promptPicker {
	return &promptPicker{in: bufio.NewReader(in), out: out}
}

// withPreset answers PickFile or PickFolder without prompting when the value
// is non-empty.
func (p *promptPicker) withPreset(file, folder string) *promptPicker {
	p.file = file
	p.folder = folder
	return p
}

func (p *promptPicker) ask(label string) (string, bool) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false
	}
	line = strings.TrimSpace(line)
	return line, line != ""
}

func (p *promptPicker) PickFolder(_ context.Context, title string) (string, bool) {
	if p.folder != "" {
		return p.folder, true
	}
	return p.ask(title)
}

func (p *promptPicker) PickFile(_ context.Context, title string) (string, bool) {
	if p.file != "" {
		return p.file, true
	}
	return p.ask(title)
}

func (p *promptPicker) SaveFile(_ context.Context, title, suggested string) (string, bool) {
	fmt.Fprintf(p.out, "%s [%s]: ", title, suggested)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", false
	}
	if line = strings.TrimSpace(line); line == "" {
		return suggested, true
	}
	return line, true
}

// readSecret reads one value without echo when stdin is a terminal and as a
// plain line otherwise.
func readSecret(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(out, "Value (empty to delete): ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"

	"koharu-go/internal/update"
)

// Prompter asks the user for decisions. Implementations return
// update.ErrInterrupted when the user interrupts a prompt.
type Prompter interface {
	Select(message string, options []string) (int, error)
	Confirm(message string, def bool) (bool, error)
	Password(message string) (string, error)
	Pause(message string) error
}

// SurveyPrompter prompts on a terminal.
type SurveyPrompter struct {
	in  *os.File
	out *os.File

	lines *bufio.Reader // piped input, created on first use
}

// NewSurveyPrompter creates a prompter reading from in and drawing on out.
func NewSurveyPrompter(in, out *os.File) *SurveyPrompter {
	return &SurveyPrompter{in: in, out: out}
}

func (p *SurveyPrompter) ask(q survey.Prompt, response interface{}) error {
	err := survey.AskOne(q, response, survey.WithStdio(p.in, p.out, p.out))
	if errors.Is(err, terminal.InterruptErr) {
		return update.ErrInterrupted
	}
	return err
}

// Select returns the index of the chosen option.
func (p *SurveyPrompter) Select(message string, options []string) (int, error) {
	var idx int
	q := &survey.Select{Message: message, Options: options, PageSize: len(options)}
	return idx, p.ask(q, &idx)
}

func (p *SurveyPrompter) Confirm(message string, def bool) (bool, error) {
	var ok bool
	q := &survey.Confirm{Message: message, Default: def}
	return ok, p.ask(q, &ok)
}

// Password reads a line without echo. Input that is not a terminal is read
// as a plain line.
func (p *SurveyPrompter) Password(message string) (string, error) {
	fmt.Fprint(p.out, message+" ")
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		if p.lines == nil {
			p.lines = bufio.NewReader(p.in)
		}
		return readLine(p.lines)
	}
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pass), nil
}

// Pause waits for enter.
func (p *SurveyPrompter) Pause(message string) error {
	var s string
	q := &survey.Input{Message: message}
	return p.ask(q, &s)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

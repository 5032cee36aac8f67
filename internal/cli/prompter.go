package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// terminalPrompter implements the engines' prompter interfaces over the
// command's stdin/stdout. With skip set, every confirmation and choice
// resolves to its default without touching the terminal; free-text
// questions are still asked because they have no default.
type terminalPrompter struct {
	in   *bufio.Reader
	out  io.Writer
	skip bool
}

func newTerminalPrompter(cmd *cobra.Command, skip bool) *terminalPrompter {
	return &terminalPrompter{
		in:   bufio.NewReader(cmd.InOrStdin()),
		out:  cmd.OutOrStdout(),
		skip: skip,
	}
}

func (p *terminalPrompter) Confirm(prompt string, def bool) (bool, error) {
	if p.skip {
		return def, nil
	}

	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	fmt.Fprintf(p.out, "%s %s: ", prompt, hint)

	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *terminalPrompter) Ask(prompt string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", prompt)
	return p.readLine()
}

func (p *terminalPrompter) Choose(prompt string, options []string, def string) (string, error) {
	if p.skip {
		return def, nil
	}

	fmt.Fprintf(p.out, "%s\n", prompt)
	for i, opt := range options {
		marker := " "
		if opt == def {
			marker = "*"
		}
		fmt.Fprintf(p.out, "  %s %d) %s\n", marker, i+1, opt)
	}
	fmt.Fprintf(p.out, "Choice [%s]: ", def)

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], nil
	}
	for _, opt := range options {
		if strings.EqualFold(answer, opt) {
			return opt, nil
		}
	}
	return def, nil
}

// SelectFiles shows a numbered list and reads a selection like "1 3" or
// "1,3". Empty input or "all" selects everything.
func (p *terminalPrompter) SelectFiles(prompt string, files []string) ([]string, error) {
	if p.skip {
		return files, nil
	}

	fmt.Fprintf(p.out, "%s\n", prompt)
	for i, f := range files {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, f)
	}
	fmt.Fprintf(p.out, "Files to include (numbers, 'all', 'none') [all]: ")

	answer, err := p.readLine()
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(answer) {
	case "", "a", "all":
		return files, nil
	case "none":
		return nil, nil
	}

	var selected []string
	for _, token := range strings.FieldsFunc(answer, func(r rune) bool { return r == ',' || r == ' ' }) {
		n, err := strconv.Atoi(token)
		if err != nil || n < 1 || n > len(files) {
			continue
		}
		selected = append(selected, files[n-1])
	}
	return selected, nil
}

func (p *terminalPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

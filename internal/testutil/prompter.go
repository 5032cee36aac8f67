package testutil

// ScriptedPrompter satisfies the stage engine's Prompter interface with
// pre-recorded answers. Each call pops the next answer; exhausted queues
// fall back to the call's default (Confirm) or zero values.
type ScriptedPrompter struct {
	Confirms   []bool
	Answers    []string
	Choices    []string
	Selections [][]string

	// ConfirmPrompts records every confirmation prompt shown, for
	// asserting that destructive operations asked before acting.
	ConfirmPrompts []string
}

// Confirm pops the next scripted yes/no answer.
func (p *ScriptedPrompter) Confirm(prompt string, def bool) (bool, error) {
	p.ConfirmPrompts = append(p.ConfirmPrompts, prompt)
	if len(p.Confirms) == 0 {
		return def, nil
	}
	answer := p.Confirms[0]
	p.Confirms = p.Confirms[1:]
	return answer, nil
}

// Ask pops the next scripted free-text answer.
func (p *ScriptedPrompter) Ask(prompt string) (string, error) {
	if len(p.Answers) == 0 {
		return "", nil
	}
	answer := p.Answers[0]
	p.Answers = p.Answers[1:]
	return answer, nil
}

// Choose pops the next scripted choice.
func (p *ScriptedPrompter) Choose(prompt string, options []string, def string) (string, error) {
	if len(p.Choices) == 0 {
		return def, nil
	}
	choice := p.Choices[0]
	p.Choices = p.Choices[1:]
	return choice, nil
}

// SelectFiles pops the next scripted file selection.
func (p *ScriptedPrompter) SelectFiles(prompt string, files []string) ([]string, error) {
	if len(p.Selections) == 0 {
		return nil, nil
	}
	selection := p.Selections[0]
	p.Selections = p.Selections[1:]
	return selection, nil
}

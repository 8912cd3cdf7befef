package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// RunPicker runs model as a bubbletea program and returns the chosen value.
// ok is false when the user cancelled.
func RunPicker(ctx context.Context, in io.Reader, out io.Writer, model PickerModel) (string, bool, error) {
	opts := []tea.ProgramOption{tea.WithOutput(out), tea.WithContext(ctx)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	p := tea.NewProgram(model, opts...)

	final, err := p.Run()
	if err != nil {
		return "", false, err
	}
	m, ok := final.(PickerModel)
	if !ok {
		return "", false, nil
	}
	value, chosen := m.Chosen()
	return value, chosen, nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/lambdalift/ir"
	"github.com/wippyai/lambdalift/lift"
	"github.com/wippyai/lambdalift/syntax"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateBrowse modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	err      error
	opts     options
	prog     *ir.Program
	stats    lift.Stats
	before   viewport.Model
	after    viewport.Model
	funcs    []*ir.Func
	input    textinput.Model
	result   string
	selected int
	state    modelState
	ready    bool
}

type loadedMsg struct {
	err    error
	prog   *ir.Program
	before string
	after  string
	stats  lift.Stats
}

type runResultMsg struct {
	err    error
	result string
}

func newInteractiveModel(opts options) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "1,2,3"
	ti.Prompt = "args: "
	ti.Width = 40
	return &interactiveModel{opts: opts, input: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	src, err := readSource(m.opts.in)
	if err != nil {
		return loadedMsg{err: err}
	}
	prog, err := syntax.Parse(m.opts.in, src)
	if err != nil {
		return loadedMsg{err: err}
	}
	before := syntax.Format(prog)

	var liftOpts []lift.Option
	if m.opts.maxSweeps > 0 {
		liftOpts = append(liftOpts, lift.WithMaxSweeps(m.opts.maxSweeps))
	}
	res, err := lift.Run(prog, liftOpts...)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{prog: prog, before: before, after: syntax.Format(prog), stats: res.Stats}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := msg.Width/2 - 2
		h := msg.Height - 12
		if h < 5 {
			h = 5
		}
		if !m.ready {
			m.before = viewport.New(w, h)
			m.after = viewport.New(w, h)
			m.ready = true
		} else {
			m.before.Width, m.before.Height = w, h
			m.after.Width, m.after.Height = w, h
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "tab":
			if m.state == stateBrowse && m.selected < len(m.funcs)-1 {
				m.selected++
			} else if m.state == stateBrowse {
				m.selected = 0
			}
			return m, nil

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.funcs) == 0 {
					return m, nil
				}
				m.state = stateInputArgs
				m.input.SetValue("")
				m.input.Focus()
				return m, textinput.Blink
			case stateInputArgs:
				m.input.Blur()
				return m, m.runSelected
			case stateShowResult:
				m.state = stateBrowse
				m.result = ""
				return m, nil
			}

		case "esc":
			m.input.Blur()
			m.state = stateBrowse
			m.result = ""
			return m, nil
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.prog = msg.prog
		m.stats = msg.stats
		for _, mod := range msg.prog.Modules {
			m.funcs = append(m.funcs, mod.Funcs()...)
		}
		m.before.SetContent(msg.before)
		m.after.SetContent(msg.after)

	case runResultMsg:
		m.state = stateShowResult
		m.result = msg.result
		if msg.err != nil {
			m.result = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
		}
		return m, nil
	}

	var cmds []tea.Cmd
	if m.state == stateInputArgs {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	} else if m.ready {
		var cmd tea.Cmd
		m.before, cmd = m.before.Update(msg)
		cmds = append(cmds, cmd)
		m.after, cmd = m.after.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// runSelected runs the selected function on both backends.
func (m *interactiveModel) runSelected() tea.Msg {
	args, err := parseArgs(m.input.Value())
	if err != nil {
		return runResultMsg{err: err}
	}
	f := m.funcs[m.selected]
	entry := f.QualifiedName()
	if mod := f.Module(); mod != nil {
		entry = mod.Name + "." + f.Name
	}

	var b strings.Builder
	for _, backend := range []string{"interp", "wasm"} {
		res, err := execute(context.Background(), m.prog, backend, entry, args, io.Discard)
		if err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("%-7s error: %v", backend, err)))
		} else {
			b.WriteString(resultStyle.Render(fmt.Sprintf("%-7s output %v, value %d", backend, res.output, res.value)))
		}
		b.WriteString("\n")
	}
	return runResultMsg{result: b.String()}
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.prog == nil || !m.ready {
		return "Lifting..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Lambda Lifter"))
	b.WriteString(" ")
	b.WriteString(m.opts.in)
	b.WriteString(fmt.Sprintf("  hoisted %d, sweeps %d, backpatches %d\n",
		m.stats.Hoisted, m.stats.Sweeps, m.stats.Backpatches))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Render(m.before.View()),
		paneStyle.Render(m.after.View())))
	b.WriteString("\n")

	switch m.state {
	case stateBrowse:
		for i, f := range m.funcs {
			name := f.QualifiedName()
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + name))
			} else {
				b.WriteString("  " + funcStyle.Render(name))
			}
			b.WriteString("  ")
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • tab next function • enter run • q quit"))

	case stateInputArgs:
		b.WriteString(fmt.Sprintf("Running %s\n", funcStyle.Render(m.funcs[m.selected].Name)))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter run • esc back"))

	case stateShowResult:
		b.WriteString(m.result)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}
	return b.String()
}

func runInteractive(opts options) error {
	p := tea.NewProgram(newInteractiveModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linqiu/marketlens/internal/backfill"
)

// progressModel shows the backfill counter while the scheduler works
// through its steps in the background.
type progressModel struct {
	spinner spinner.Model
	date    string
	prog    backfill.Progress
	started bool
	updates <-chan backfill.Progress
}

func newProgressModel(date string, total int, updates <-chan backfill.Progress) progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle
	return progressModel{
		spinner: sp,
		date:    date,
		prog:    backfill.Progress{Total: total},
		updates: updates,
	}
}

// RunBackfill drives the scheduler with a spinner and an advancing
// (finished/total) counter. It blocks until every step has resolved.
func RunBackfill(ctx context.Context, sched *backfill.Scheduler, date string, steps []backfill.Step) error {
	updates := make(chan backfill.Progress, 2*len(steps))
	go func() {
		sched.Run(ctx, date, steps, func(p backfill.Progress) {
			updates <- p
		})
		close(updates)
	}()

	m := newProgressModel(date, len(steps), updates)
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

func (m progressModel) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		p, ok := <-m.updates
		if !ok {
			return backfillDoneMsg{}
		}
		return progressMsg(p)
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.prog = backfill.Progress(msg)
		m.started = true
		return m, m.waitForProgress()
	case backfillDoneMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		// No cancellation: keys are ignored while fetches are in flight.
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	label := "planning"
	if m.started {
		label = string(m.prog.Current)
	}
	return fmt.Sprintf(" %s %s %s %s\n",
		m.spinner.View(),
		progressStyle.Render("Backfilling "+m.date),
		dimStyle.Render("· "+label),
		dimStyle.Render(fmt.Sprintf("(%d/%d)", m.prog.Finished, m.prog.Total)))
}

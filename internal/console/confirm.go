package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/tusk-sh/tusk/internal/core/plan"
)

// Prompter collects interactive yes/no confirmations via terminal forms.
// It implements the executor's Confirmer interface. Constructing one only
// makes sense when stdin is a terminal; check IsInteractive first.
type Prompter struct{}

// NewPrompter returns an interactive confirmer.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// ConfirmPlan asks whether the displayed plan should run. Ctrl-C counts
// as a decline, not an error.
func (pr *Prompter) ConfirmPlan(p *plan.Plan) (bool, error) {
	title := "Execute this plan?"
	if n := len(p.Actions); n > 1 {
		title = fmt.Sprintf("Execute these %d actions?", n)
	}

	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ConfirmDelete asks for secondary confirmation of a destructive delete,
// listing the items the preview found.
func (pr *Prompter) ConfirmDelete(command string, items []string) (bool, error) {
	desc := "No preview available for: " + command
	if len(items) > 0 {
		shown := items
		const maxShown = 15
		if len(shown) > maxShown {
			shown = append(append([]string{}, items[:maxShown]...),
				fmt.Sprintf("... and %d more", len(items)-maxShown))
		}
		desc = fmt.Sprintf("This will delete %d item(s):\n%s", len(items), strings.Join(shown, "\n"))
	}

	var ok bool
	err := huh.NewConfirm().
		Title("Confirm destructive delete").
		Description(desc).
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}

// AutoConfirmer answers yes to everything. Used for --yes runs and
// non-interactive sessions that explicitly opted in.
type AutoConfirmer struct{}

func (AutoConfirmer) ConfirmPlan(*plan.Plan) (bool, error)         { return true, nil }
func (AutoConfirmer) ConfirmDelete(string, []string) (bool, error) { return true, nil }

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/knots"
	"github.com/aretw0/knots/internal/presentation/tui"
	"github.com/aretw0/knots/pkg/domain"
)

// PlayOptions configures an interactive session.
type PlayOptions struct {
	// SessionID resumes the given session. Empty starts a fresh one.
	SessionID string
	Renderer  tui.Renderer
	// Quiet suppresses system messages.
	Quiet bool
}

// RunSession plays a session on in/out. It returns the last step shown and
// stops at an ending, a node without choices, "quit", end of input or
// cancellation of ctx. The session is left in the store so it can be resumed.
func RunSession(ctx context.Context, eng *Engine, in io.Reader, out io.Writer, opts PlayOptions) (domain.StepResult[domain.Payload], error) {
	render := opts.Renderer
	if render == nil {
		render = tui.NewRenderer(true)
	}
	say := func(format string, args ...any) {
		if !opts.Quiet {
			printSystemMessage(out, format, args...)
		}
	}

	id := opts.SessionID
	if id == "" {
		id = knots.NewSessionID()
	}
	if _, err := eng.Session(ctx, id); err == nil {
		say("Resuming session '%s'.", id)
	} else if errors.Is(err, domain.ErrSessionNotFound) {
		say("Session '%s' active.", id)
	} else {
		return domain.StepResult[domain.Payload]{}, err
	}

	step, err := eng.Start(ctx, id, nil)
	if err != nil {
		return step, err
	}

	scanner := bufio.NewScanner(NewInterruptibleReader(in, ctx.Done()))

	for {
		for _, effect := range step.Effects {
			say("Effect: %v", effect)
		}

		text, err := render(tui.StepMarkdown(step))
		if err != nil {
			return step, fmt.Errorf("failed to render step: %w", err)
		}
		fmt.Fprint(out, text)

		if step.Terminal() {
			say("Finished at '%s'.", step.Position())
			return step, nil
		}
		if len(step.Choices) == 0 {
			say("No choices left at '%s'.", step.Position())
			return step, nil
		}

		next, quit, err := prompt(ctx, eng, id, step, scanner, out)
		if err != nil {
			if isInterrupted(err) {
				say("Stopped at '%s'.", step.Position())
			}
			return step, err
		}
		if quit {
			say("Session '%s' saved at '%s'.", id, step.Position())
			return step, nil
		}
		step = next
	}
}

// prompt reads lines until one names an available choice, then takes it.
func prompt(ctx context.Context, eng *Engine, id string, step domain.StepResult[domain.Payload], scanner *bufio.Scanner, out io.Writer) (domain.StepResult[domain.Payload], bool, error) {
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return step, false, err
			}
			return step, false, io.EOF
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "quit", "exit":
			return step, true, nil
		}

		choiceID, ok := resolveChoice(step.Choices, input)
		if !ok {
			fmt.Fprintf(out, "Unknown choice %q\n", input)
			continue
		}

		next, err := eng.Choose(ctx, id, choiceID, nil)
		if errors.Is(err, domain.ErrConditionUnmet) {
			fmt.Fprintf(out, "Choice %q is not available\n", choiceID)
			continue
		}
		if err != nil {
			return step, false, err
		}
		return next, false, nil
	}
}

// resolveChoice accepts either the 1-based number shown in the list or the choice ID.
func resolveChoice(choices []domain.ChoiceView, input string) (string, bool) {
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(choices) {
			return choices[n-1].ID, true
		}
		return "", false
	}
	for _, c := range choices {
		if c.ID == input {
			return c.ID, true
		}
	}
	return "", false
}

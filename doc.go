/*
Package knots is a branching-narrative engine: a story is a directed graph of
nodes grouped into knots, walked one choice at a time.

It has two independent halves. The analyzer (package analysis) inspects a story
offline and reports unreachable nodes, dead ends and loops that can never be
left. The runtime walks the story: it holds a single position, filters choices
through host-provided conditions and reports the effects attached to each move.

# Concept

The story is data; the host owns everything else. Conditions are resolved by
named hooks or an expression evaluator the host injects, and effects are opaque
values of the host's own type handed back in order. A guard whose resolver is
missing is an error, never a silent false.

The Engine in this package wraps the runtime for multi-session use. Each call
rebuilds a runtime at the session's stored position, applies the operation and
persists the new position through a ports.SessionStore (memory or Redis).

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/knots"
	)

	func main() {
		eng, err := knots.Load("story.yaml",
			knots.WithConditionHook("has_key", func(state any) bool { return true }),
		)
		if err != nil {
			log.Fatal(err)
		}

		for _, issue := range eng.Analyze().Issues {
			log.Printf("%s: %s", issue.Kind, issue.Message)
		}

		ctx := context.Background()
		step, err := eng.Start(ctx, knots.NewSessionID(), nil)
		if err != nil {
			log.Fatal(err)
		}

		for _, line := range step.Text {
			fmt.Println(line)
		}
		for _, c := range step.Choices {
			fmt.Printf("[%s] %s\n", c.ID, c.Label)
		}
	}
*/
package knots

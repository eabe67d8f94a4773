/*
Package domain contains the core domain models of the knots narrative engine.

It defines the story graph (Story, Knot, Node, Choice), the runtime Position and
the values the engine hands back to its host (StepResult, AnalysisResult). The
package is kept pure: it performs no I/O and holds no mutable global state.

# Key Entities

  - Story: a version tag, an entry knot and a map of knots.
  - Knot: a named section of the story with its own entry node.
  - Node: a single beat (text, tags, choices, an arrival effect, an optional ending).
  - Choice: a labeled, optionally guarded edge to another node.
  - Position: the (knot, node) pair a Runtime currently points at.
  - StepResult: what the host renders after each step.
  - AnalysisIssue: a structural defect reported by the analyzer.

Effects are application-defined. Every graph type is parametrized by the effect
type E, so an embedding game can plug its own concrete shape in. Stories loaded
from files use Payload.
*/
package domain

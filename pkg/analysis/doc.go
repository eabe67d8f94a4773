/*
Package analysis validates the structure of a story graph before it ships.

Analyze derives a directed graph from a story and reports three kinds of
defects as data (never as errors):

  - UNREACHABLE: nodes that no path from the story's entry point reaches,
    including the entry point itself when it does not exist.
  - DEAD_END: reachable nodes with no choices and no ending.
  - INESCAPABLE_LOOP: strongly connected sets of reachable nodes with no ending
    inside and no edge leaving them.

Strongly connected components are computed with Tarjan's algorithm driven by an
explicit frame stack, so graph depth is bounded by heap memory rather than the
goroutine stack.
*/
package analysis

package domain

// Field constants shared by the loader, the transports and the CLI.
const (
	// KeySeparator joins a knot ID and a node ID into a graph key.
	KeySeparator = "::"

	// TargetSeparator splits the "knot/node" shorthand used in story files.
	TargetSeparator = "/"

	// DefaultVersion is assumed when a story file carries no version tag.
	DefaultVersion = "1"
)

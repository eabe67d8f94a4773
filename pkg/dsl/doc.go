/*
Package dsl provides a fluent Go builder for knots stories.

It lets developers assemble a story graph in code instead of a YAML file, which
is handy for tests, generated content and IDE autocompletion. The effect type is
chosen by the caller.

Example usage:

	b := dsl.New[string]()

	b.Knot("intro").Node("start").
		Text("You wake up in a dark room.").
		Choice("look", "Look around", "look").Effect("noticed_door").
		Choice("sleep", "Go back to sleep", "hallway/entry").When("tired")

	b.Knot("intro").Node("look").
		Text("There is a door.").
		Choice("open", "Open the door", "hallway/entry")

	b.Knot("hallway").Node("entry").
		Text("Fresh air.").
		Ending("escaped", "You escaped")

	story, err := b.Build()

The first knot added becomes the story entry and the first node added to a knot
becomes the knot entry, unless overridden with Entry.
*/
package dsl

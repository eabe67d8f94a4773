package knots_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/knots"
	"github.com/aretw0/knots/pkg/dsl"
)

// ExampleNew builds a story with the DSL and plays it to an ending.
func ExampleNew() {
	b := dsl.New[string]()
	b.Knot("tavern").Node("door").
		Text("A tavern door creaks.").
		Choice("enter", "Step inside", "bar").Effect("entered")
	b.Knot("tavern").Node("bar").
		Text("The barkeep nods.").
		Ending("welcome", "Welcome, traveller")

	engine, err := knots.New(b.MustBuild())
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	step, err := engine.Start(ctx, "example", nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(step.Text[0])
	for _, c := range step.Choices {
		fmt.Printf("[%s] %s\n", c.ID, c.Label)
	}

	step, err = engine.Choose(ctx, "example", "enter", nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(step.Text[0])
	fmt.Println(step.Effects)
	fmt.Println(step.Ending.Label)

	// Output:
	// A tavern door creaks.
	// [enter] Step inside
	// The barkeep nods.
	// [entered]
	// Welcome, traveller
}

// ExampleEngine_Analyze reports a node that can never be reached.
func ExampleEngine_Analyze() {
	b := dsl.New[string]()
	b.Knot("main").Node("start").Choice("go", "Go", "end")
	b.Knot("main").Node("end").Ending("done", "")
	b.Knot("main").Node("attic").Ending("secret", "")

	engine, err := knots.New(b.MustBuild())
	if err != nil {
		log.Fatal(err)
	}

	for _, issue := range engine.Analyze().Issues {
		fmt.Println(issue.Kind, issue.Message)
	}

	// Output:
	// UNREACHABLE node 'main/attic' is unreachable from the entry point
}

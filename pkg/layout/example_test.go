package layout_test

import (
	"fmt"

	"github.com/foldline/storypress/pkg/layout"
)

// Laying out a page is deterministic: the engine is keyed by book ID and
// page number, so the same inputs always produce the same layout.
func ExampleEngine_GenerateLayout() {
	eng := layout.NewEngine("demo-book", 1)
	l := eng.GenerateLayout("hero_spread", "Milo set off at dawn.", "https://img.example/1.png")

	fmt.Println(l.Template)
	fmt.Println(len(l.Elements))
	fmt.Println(l.Seed == layout.Seed("demo-book", 1))
	// Output:
	// hero_spread
	// 2
	// true
}

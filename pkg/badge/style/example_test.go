package style_test

import (
	"fmt"

	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
)

func ExampleResolve() {
	stored := style.Options{Label: "Hits", Layout: "number-only"}
	overrides := style.Options{Label: "Views"}

	cfg := style.Resolve(overrides, stored)
	fmt.Println(cfg.Label, cfg.Layout, cfg.Background)
	// Output: Views number-only #222
}

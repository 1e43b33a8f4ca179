package plot_test

import (
	"fmt"

	"github.com/devmap/devmap/pkg/plot"
)

func ExampleTrendline() {
	points := []plot.Point{{X: 1, Y: 3}, {X: 2, Y: 5}, {X: 3, Y: 7}}
	t, err := plot.Trendline(points, false, false)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("slope %.2f, intercept %.2f, r2 %.2f\n", t.Slope, t.Intercept, t.R2)
	// Output:
	// slope 2.00, intercept 1.00, r2 1.00
}

func ExampleParetoFrontier() {
	points := []plot.Point{
		{X: 1, Y: 1, Label: "A"},
		{X: 2, Y: 3, Label: "B"},
		{X: 3, Y: 2, Label: "C"},
		{X: 4, Y: 5, Label: "D"},
	}
	upper, lower := plot.ParetoFrontier(points)
	for _, p := range upper {
		fmt.Print(p.Label)
	}
	fmt.Println()
	for _, p := range lower {
		fmt.Print(p.Label)
	}
	fmt.Println()
	// Output:
	// ABD
	// DCA
}

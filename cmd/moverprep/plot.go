package main

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// saveLabelPlot writes a bar chart of the real/bogus sample counts to a PNG.
func saveLabelPlot(path string, realCount, bogusCount int) error {
	p := plot.New()
	p.Title.Text = "Mover label balance"
	p.Y.Label.Text = "samples"

	bars, err := plotter.NewBarChart(plotter.Values{float64(realCount), float64(bogusCount)}, vg.Points(40))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX("real", "bogus")

	if err := p.Save(4*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot to %s: %w", path, err)
	}
	return nil
}

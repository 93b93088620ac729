package lingauss

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// NewPlot creates a plot of model m gain, bias and covariance diagonal across its horizon.
// Every output dimension i is drawn as k_t[i], S_t[i,i] and one dotted line per gain entry K_t[i,j].
// It returns error if m is nil or if gonum plot fails to be created.
func NewPlot(m *Model) (*plot.Plot, error) {
	if m == nil {
		return nil, fmt.Errorf("invalid model supplied")
	}

	p := plot.New()

	p.Title.Text = "Linear-Gaussian model"
	p.X.Label.Text = "t"
	p.Y.Label.Text = "value"

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	T := m.Horizon()
	for i := 0; i < m.du; i++ {
		bias := make(plotter.XYs, T)
		cov := make(plotter.XYs, T)
		for t := 0; t < T; t++ {
			bias[t].X, bias[t].Y = float64(t), m.bias[t].AtVec(i)
			cov[t].X, cov[t].Y = float64(t), m.cov[t].At(i, i)
		}

		biasLine, err := plotter.NewLine(bias)
		if err != nil {
			return nil, fmt.Errorf("failed to create bias line: %v", err)
		}
		biasLine.LineStyle.Color = lineColor(i, 255)
		biasLine.LineStyle.Width = vg.Points(1)

		covLine, err := plotter.NewLine(cov)
		if err != nil {
			return nil, fmt.Errorf("failed to create covariance line: %v", err)
		}
		covLine.LineStyle.Color = lineColor(i, 128)
		covLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

		p.Add(biasLine, covLine)
		p.Legend.Add(fmt.Sprintf("k[%d]", i), biasLine)
		p.Legend.Add(fmt.Sprintf("S[%d,%d]", i, i), covLine)

		for j := 0; j < m.dx; j++ {
			gain := make(plotter.XYs, T)
			for t := 0; t < T; t++ {
				gain[t].X, gain[t].Y = float64(t), m.gain[t].At(i, j)
			}

			gainLine, err := plotter.NewLine(gain)
			if err != nil {
				return nil, fmt.Errorf("failed to create gain line: %v", err)
			}
			gainLine.LineStyle.Color = lineColor(i+j+1, 192)
			gainLine.LineStyle.Dashes = []vg.Length{vg.Points(1), vg.Points(2)}

			p.Add(gainLine)
			p.Legend.Add(fmt.Sprintf("K[%d,%d]", i, j), gainLine)
		}
	}

	return p, nil
}

var palette = []color.RGBA{
	{R: 255, B: 128},
	{G: 160},
	{B: 255},
	{R: 169, G: 169, B: 169},
}

func lineColor(i int, alpha uint8) color.RGBA {
	c := palette[i%len(palette)]
	c.A = alpha

	return c
}

// Package chart draws the current/voltage characteristic of the lab circuit.
package chart

import (
	"fmt"
	"io"

	"ohms_lab/internal/lab/circuit"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Size of the rendered chart.
const (
	Width  = 12 * vg.Centimeter
	Height = 8 * vg.Centimeter
)

// IVLine samples I = V/R at every voltage slider step for the given resistance.
func IVLine(resistance float64) (plotter.XYs, error) {
	n := int((circuit.MaxVoltage-circuit.MinVoltage)/circuit.VoltageStep) + 1
	pts := make(plotter.XYs, 0, n)
	for v := circuit.MinVoltage; v <= circuit.MaxVoltage; v += circuit.VoltageStep {
		i, err := circuit.Current(v, resistance)
		if err != nil {
			return nil, err
		}
		pts = append(pts, plotter.XY{X: v, Y: i})
	}
	return pts, nil
}

// RenderIV writes an SVG with the I-V line for st.Resistance and a marker at
// the operating point (st.Voltage, st.Current).
func RenderIV(w io.Writer, st circuit.State) error {
	line, err := IVLine(st.Resistance)
	if err != nil {
		return fmt.Errorf("iv line: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("I = U / R (R = %g Ω)", st.Resistance)
	p.X.Label.Text = "Spänning U (V)"
	p.Y.Label.Text = "Ström I (A)"
	p.X.Min = 0
	p.X.Max = circuit.MaxVoltage
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	l, err := plotter.NewLine(line)
	if err != nil {
		return fmt.Errorf("iv line: %w", err)
	}
	l.LineStyle.Width = vg.Points(1.5)

	op, err := plotter.NewScatter(plotter.XYs{{X: st.Voltage, Y: st.Current}})
	if err != nil {
		return fmt.Errorf("operating point: %w", err)
	}
	op.GlyphStyle.Shape = draw.CircleGlyph{}
	op.GlyphStyle.Radius = vg.Points(4)

	p.Add(l, op)
	p.Legend.Add("I-U", l)
	p.Legend.Add(circuit.Format(st.Current, 3)+" A", op)
	p.Legend.Top = true
	p.Legend.Left = true

	wt, err := p.WriterTo(Width, Height, "svg")
	if err != nil {
		return fmt.Errorf("svg writer: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

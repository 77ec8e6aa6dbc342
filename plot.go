/*
 * plot.go, part of resp2.
 *
 *
 * Copyright 2025 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package resp2

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// A ChargeSet is one labeled charge series for plotting, say, the
// gas-phase charges of a molecule.
type ChargeSet struct {
	Label   string
	Charges []float64
}

// ChargePlot plots the given charge sets per atom index and saves the
// plot with the given file name, the format taken from its extension.
// It helps eyeballing how far the phases disagree, and what the mixing
// did, before committing to a delta value.
func ChargePlot(plotname string, sets ...ChargeSet) error {
	errid := "resp2/ChargePlot"
	if len(sets) == 0 {
		return fmt.Errorf("%s: no charge sets given", errid)
	}
	p := plot.New()
	p.Title.Text = "Partial charges per atom"
	p.X.Label.Text = "Atom index"
	p.Y.Label.Text = "Charge (e)"
	p.Add(plotter.NewGrid())
	args := make([]interface{}, 0, 2*len(sets))
	for _, s := range sets {
		pts := make(plotter.XYs, len(s.Charges))
		for i, q := range s.Charges {
			pts[i].X = float64(i + 1)
			pts[i].Y = q
		}
		args = append(args, s.Label, pts)
	}
	if err := plotutil.AddLinePoints(p, args...); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	if err := p.Save(15*vg.Centimeter, 10*vg.Centimeter, plotname); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	return nil
}

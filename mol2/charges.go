/*
 * charges.go, part of resp2.
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

package mol2

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Scale returns a RESP1-type charge set: every charge multiplied by delta.
// delta is taken as a fraction, not a percentage, and it is deliberately
// not clamped to [0,1]; scaled charge sets outside that range are
// sometimes wanted for testing force-field sensitivity.
func Scale(charges []float64, delta float64) []float64 {
	return floats.ScaleTo(make([]float64, len(charges)), delta, charges)
}

// Mix returns the RESP2 combination of a gas-phase and a condensed-phase
// charge set: gas*(1-delta) + liquid*delta, per atom. delta=0 gives the
// pure gas-phase set and delta=1 the pure condensed-phase one. The two
// sets must have the same length, that is, come from the same molecule
// with the same atom ordering.
func Mix(gas, liquid []float64, delta float64) ([]float64, error) {
	errid := "mol2/Mix"
	if len(gas) != len(liquid) {
		return nil, fmt.Errorf("%s: %w: %d gas-phase vs %d condensed-phase", errid, ErrChargeMismatch, len(gas), len(liquid))
	}
	mixed := floats.ScaleTo(make([]float64, len(gas)), 1-delta, gas)
	floats.AddScaled(mixed, delta, liquid)
	return mixed, nil
}

// MixFiles reads a gas-phase and a condensed-phase MOL2 file for the same
// molecule and returns the gas-phase molecule together with the mixed
// charge set. Mixing is by atom index, so the files must have their atoms
// in the same order; only the atom counts can be verified here.
func MixFiles(gasname, liquidname string, delta float64) (*Molecule, []float64, error) {
	errid := "mol2/MixFiles"
	gas, err := ReadFile(gasname)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", errid, err)
	}
	liquid, err := ReadFile(liquidname)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", errid, err)
	}
	mixed, err := Mix(gas.Charges(), liquid.Charges(), delta)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %s vs %s: %w", errid, gasname, liquidname, err)
	}
	return gas, mixed, nil
}

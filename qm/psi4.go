/*
 * psi4.go, part of resp2.
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
//In order to use this part of the library you need the Psi4 program,
//which can be obtained from the Psi4 project. Please cite the Psi4
//references if you use the program.

package qm

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/rmera/resp2/xyz"
)

// Psi4Handle represents a Psi4 geometry optimization. Its zero value is
// not usable; get one from NewPsi4Handle.
type Psi4Handle struct {
	command   string
	inputname string
	nCPU      int
	wrkdir    string
	optxyz    string //where the input asks Psi4 to leave the optimized geometry
}

// NewPsi4Handle initializes and returns a Psi4 handle with its values
// set to their defaults.
func NewPsi4Handle() *Psi4Handle {
	O := new(Psi4Handle)
	O.SetDefaults()
	return O
}

// SetnCPU sets the number of threads Psi4 gets.
func (O *Psi4Handle) SetnCPU(cpu int) {
	O.nCPU = cpu
}

// Command returns the path and name for the Psi4 executable.
func (O *Psi4Handle) Command() string {
	return O.command
}

// SetName sets the name for the calculation, which defines the input
// and output file names.
func (O *Psi4Handle) SetName(name string) {
	O.inputname = name
}

// SetCommand sets the path and name for the Psi4 executable.
func (O *Psi4Handle) SetCommand(name string) {
	O.command = name
}

// SetWorkDir sets the working directory for the calculation.
func (O *Psi4Handle) SetWorkDir(d string) {
	O.wrkdir = d
}

// SetDefaults sets calculation parameters to their defaults. Defaults
// are not part of the API.
func (O *Psi4Handle) SetDefaults() {
	O.command = os.ExpandEnv("psi4")
	O.nCPU = runtime.NumCPU() / 2
	if O.nCPU < 1 {
		O.nCPU = 1
	}
}

// The optimization runs through a ladder of theory levels, the cheap
// ones first, so the expensive step starts from a good geometry.
// Only the method of the last step is configurable; the ESP theory
// level conventions fix the rest.
var optLadder = []struct {
	basis  string
	method string
}{
	{"6-31G*", "HF"},
	{"cc-pV(D+d)Z", "HF"},
	{"cc-pV(D+d)Z", ""}, //method filled from the Calc
}

// BuildInput writes a Psi4 input that optimizes the given geometry
// stepwise and saves the final structure as an XYZ file next to the
// input.
func (O *Psi4Handle) BuildInput(geom *xyz.Geometry, Q *Calc) error {
	errid := "Psi4Handle/BuildInput"
	if O.wrkdir != "" && !strings.HasSuffix(O.wrkdir, "/") {
		O.wrkdir += "/"
	}
	if O.inputname == "" {
		O.inputname = "resp2"
	}
	if geom == nil || Q == nil {
		return fmt.Errorf("%s: no geometry or calculation settings given", errid)
	}
	method := Q.Method
	if method == "" {
		method = "PW6B95"
	}
	mem := Q.Memory
	if mem == 0 {
		mem = 12
	}
	multi := Q.Multi
	if multi == 0 {
		multi = 1
	}
	O.optxyz = O.inputname + "_opt.xyz"
	f, err := os.Create(O.wrkdir + O.inputname + ".in")
	if err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	defer f.Close()
	fmt.Fprintf(f, "memory %d gb\nmolecule mol {\nnoreorient\nnocom\n%d %d\n", mem, Q.Charge, multi)
	f.WriteString(geom.Body())
	f.WriteString("}\n")
	for _, step := range optLadder {
		m := step.method
		if m == "" {
			m = method
		}
		fmt.Fprintf(f, "set basis %s\noptimize('%s')\n", step.basis, m)
	}
	fmt.Fprintf(f, "\nmol.save_xyz_file('%s',True)\n", O.optxyz)
	return nil
}

// Run runs the optimization previously set up with BuildInput. It waits
// or not for the result depending on wait. Not waiting only works on
// unix-compatible systems, as it uses sh and nohup.
func (O *Psi4Handle) Run(wait bool) (err error) {
	errid := "Psi4Handle/Run"
	com := fmt.Sprintf(" %s.in %s.out -n %d", O.inputname, O.inputname, O.nCPU)
	if wait {
		command := exec.Command("sh", "-c", O.command+com)
		command.Dir = O.wrkdir
		err = command.Run()
	} else {
		command := exec.Command("sh", "-c", "nohup "+O.command+com)
		command.Dir = O.wrkdir
		err = command.Start()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	return nil
}

// normalTermination checks the marker Psi4 prints at the very end of
// every successful run.
func (O *Psi4Handle) normalTermination() bool {
	ok, err := hasMarker(O.wrkdir+O.inputname+".out", "beer")
	return err == nil && ok
}

// OptimizedGeometry reads the geometry saved by the last optimization
// step. It fails if the calculation didn't end normally.
func (O *Psi4Handle) OptimizedGeometry() (*xyz.Geometry, error) {
	errid := "Psi4Handle/OptimizedGeometry"
	if !O.normalTermination() {
		return nil, fmt.Errorf("%s: calculation didn't end normally", errid)
	}
	G, err := xyz.ReadFile(O.wrkdir + O.optxyz)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	return G, nil
}

// Energy returns the energy, in kcal/mol, of the last completed
// optimization step, by parsing the Psi4 output from the end. Outputs
// compressed after the run (.out.gz) are read too.
func (O *Psi4Handle) Energy() (float64, error) {
	errid := "Psi4Handle/Energy"
	energyline := lastLineWith("Final energy is", O.wrkdir+O.inputname+".out")
	if energyline == "" {
		return 0, fmt.Errorf("%s: no energy found in output", errid)
	}
	split := strings.Fields(energyline)
	if len(split) < 4 {
		return 0, fmt.Errorf("%s: bad format in energy line: %s", errid, energyline)
	}
	energy, err := strconv.ParseFloat(split[3], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: couldn't parse energy %q: %w", errid, split[3], err)
	}
	return energy * h2Kcal, nil
}

/*
 * omega.go, part of resp2.
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
//In order to use this part of the library you need OpenEye's Omega,
//which requires an OpenEye license. Please cite the Omega references
//if you use the program.

package qm

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// OmegaHandle represents a conformer generation with OpenEye's Omega.
type OmegaHandle struct {
	command   string
	wrkdir    string
	inputname string
	outname   string
	options   []string
	//Conformer selection settings. They mirror the Omega flags and
	//are not part of the API.
	MaxConfs        int
	EWindow         float64
	RMSThres        float64
	RangeIncrement  int
	SampleHydrogens bool
	EnumNitrogen    bool
}

// NewOmegaHandle initializes and returns an Omega handle with its
// values set to their defaults.
func NewOmegaHandle() *OmegaHandle {
	O := new(OmegaHandle)
	O.SetDefaults()
	return O
}

// Command returns the path and name for the Omega executable.
func (O *OmegaHandle) Command() string {
	return O.command
}

// SetCommand sets the path and name for the Omega executable.
func (O *OmegaHandle) SetCommand(name string) {
	O.command = name
}

// SetWorkDir sets the working directory for the generation.
func (O *OmegaHandle) SetWorkDir(d string) {
	O.wrkdir = d
}

// SetDefaults sets the conformer selection to the settings used for
// RESP2 parameterizations: up to 5 conformers within 9 kcal/mol of the
// lowest one, sampling hydrogen rotamers and nitrogen invertomers.
func (O *OmegaHandle) SetDefaults() {
	O.command = os.ExpandEnv("omega2")
	O.MaxConfs = 5
	O.EWindow = 9.0
	O.RMSThres = 0.5
	O.RangeIncrement = 2
	O.SampleHydrogens = true
	O.EnumNitrogen = true
}

// BuildInput records the molecule file to read and the multi-conformer
// file to produce, both relative to the work directory, and assembles
// the Omega options. Omega needs no input file of its own.
func (O *OmegaHandle) BuildInput(infile, outfile string) error {
	errid := "OmegaHandle/BuildInput"
	if O.wrkdir != "" && !strings.HasSuffix(O.wrkdir, "/") {
		O.wrkdir += "/"
	}
	if _, err := os.Stat(O.wrkdir + infile); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	O.inputname = infile
	O.outname = outfile
	O.options = make([]string, 0, 8)
	O.options = append(O.options, "-in "+infile)
	O.options = append(O.options, "-out "+outfile)
	O.options = append(O.options, fmt.Sprintf("-maxconfs %d", O.MaxConfs))
	O.options = append(O.options, fmt.Sprintf("-ewindow %3.1f", O.EWindow))
	O.options = append(O.options, fmt.Sprintf("-rms %3.1f", O.RMSThres))
	O.options = append(O.options, fmt.Sprintf("-rangeIncrement %d", O.RangeIncrement))
	if O.SampleHydrogens {
		O.options = append(O.options, "-sampleHydrogens true")
	}
	if O.EnumNitrogen {
		O.options = append(O.options, "-enumNitrogen true")
	}
	O.options = append(O.options, "-commentEnergy true")
	return nil
}

// Run runs the conformer generation. It waits or not for the result
// depending on wait. Not waiting only works on unix-compatible systems,
// as it uses sh and nohup.
func (O *OmegaHandle) Run(wait bool) (err error) {
	errid := "OmegaHandle/Run"
	com := fmt.Sprintf(" %s > %s.log 2>&1", strings.Join(O.options, " "), O.inputname)
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

// ConformerFiles splits the multi-conformer MOL2 produced by Omega into
// one file per conformer, named <resname>-conformers_<k>.mol2 in the
// work directory, and returns their names. The downstream programs take
// one geometry per file, hence the splitting.
func (O *OmegaHandle) ConformerFiles(resname string) ([]string, error) {
	errid := "OmegaHandle/ConformerFiles"
	f, err := os.Open(O.wrkdir + O.outname)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	defer f.Close()
	names := make([]string, 0, O.MaxConfs)
	var out *os.File
	defer func() {
		if out != nil {
			out.Close()
		}
	}()
	buf := bufio.NewReader(f)
	var line string
	var rerr error
	for {
		line, rerr = buf.ReadString('\n')
		if line == "" && rerr != nil {
			break
		}
		if strings.Contains(line, "@<TRIPOS>MOLECULE") {
			if out != nil {
				out.Close()
			}
			name := fmt.Sprintf("%s-conformers_%d.mol2", resname, len(names)+1)
			out, err = os.Create(O.wrkdir + name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", errid, err)
			}
			names = append(names, name)
		}
		if out != nil {
			out.WriteString(line)
		}
		if rerr != nil {
			break
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: no conformers in %s", errid, O.wrkdir+O.outname)
	}
	return names, nil
}

/*
 * babel.go, part of resp2.
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
//In order to use this part of the library you need the obabel program
//from the Open Babel project.

package qm

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// BabelHandle wraps the obabel format converter. Unlike the QM handles
// its runs are always waited for; conversions take well under a second.
type BabelHandle struct {
	command string
	wrkdir  string
}

// NewBabelHandle initializes and returns an obabel handle.
func NewBabelHandle() *BabelHandle {
	O := new(BabelHandle)
	O.SetDefaults()
	return O
}

// SetCommand sets the path and name for the obabel executable.
func (O *BabelHandle) SetCommand(name string) {
	O.command = name
}

// SetWorkDir sets the directory in which conversions run.
func (O *BabelHandle) SetWorkDir(d string) {
	if d != "" && !strings.HasSuffix(d, "/") {
		d += "/"
	}
	O.wrkdir = d
}

// SetDefaults sets the executable to the obabel in the PATH.
func (O *BabelHandle) SetDefaults() {
	O.command = os.ExpandEnv("obabel")
}

// Convert converts infile to outfile, both relative to the work
// directory, with the formats taken from the file extensions.
func (O *BabelHandle) Convert(infile, outfile string) error {
	errid := "BabelHandle/Convert"
	command := exec.Command(O.command, infile, "-O", outfile)
	command.Dir = O.wrkdir
	if err := command.Run(); err != nil {
		return fmt.Errorf("%s: %s to %s: %w", errid, infile, outfile, err)
	}
	if _, err := os.Stat(O.wrkdir + outfile); err != nil {
		return fmt.Errorf("%s: obabel produced no %s: %w", errid, outfile, err)
	}
	return nil
}

// FromSMILES builds a 3D structure with hydrogens from a SMILES string
// and writes it to outfile (relative to the work directory), titled
// with the given residue name.
func (O *BabelHandle) FromSMILES(smiles, outfile, resname string) error {
	errid := "BabelHandle/FromSMILES"
	command := exec.Command(O.command, "-:"+smiles, "--gen3d", "-h", "--title", resname, "-O", outfile)
	command.Dir = O.wrkdir
	if err := command.Run(); err != nil {
		return fmt.Errorf("%s: %q: %w", errid, smiles, err)
	}
	if _, err := os.Stat(O.wrkdir + outfile); err != nil {
		return fmt.Errorf("%s: obabel produced no %s: %w", errid, outfile, err)
	}
	return nil
}

/*
 * respyte.go, part of resp2.
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
//In order to use this part of the library you need the respyte scripts
//from the Open Force Field group, and a python able to run them.

package qm

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// The yaml layout of respyte's input/input.yml, which controls the ESP
// grid generation and the QM single points on the grid.
type espInput struct {
	Molecules       map[string]int `yaml:"molecules"`
	Charges         map[string]int `yaml:"charges"`
	Cheminformatics string         `yaml:"cheminformatics"`
	Grid            gridSetting    `yaml:"grid_setting"`
}

type gridSetting struct {
	Forcegen string  `yaml:"forcegen"`
	Type     string  `yaml:"type"` //msk/extendedmsk/fcc/newfcc/vdwfactors/vdwconstants
	Radii    string  `yaml:"radii"`
	Method   string  `yaml:"method"`
	Basis    string  `yaml:"basis"`
	PCM      string  `yaml:"pcm"`
	Solvent  string  `yaml:"solvent,omitempty"`
	Space    float64 `yaml:"space"`
	Inner    float64 `yaml:"inner"`
	Outer    float64 `yaml:"outer"`
}

// The yaml layout of respyte's input/respyte.yml, which controls the
// charge fit itself.
type respInput struct {
	Molecules       map[string]int `yaml:"molecules"`
	Charges         map[string]int `yaml:"charges"`
	Cheminformatics string         `yaml:"cheminformatics"`
	Boundary        boundarySelect `yaml:"boundary_select"`
	Restraint       restraint      `yaml:"restraint"`
}

type boundarySelect struct {
	Radii string  `yaml:"radii"`
	Inner float64 `yaml:"inner"`
	Outer float64 `yaml:"outer"`
}

type restraint struct {
	Penalty  string   `yaml:"penalty"`
	Matrices []string `yaml:"matrices"`
	A1       float64  `yaml:"a1"`
	A2       float64  `yaml:"a2"`
	B        float64  `yaml:"b"`
}

// RespyteHandle represents one ESP fit: grid generation, the QM single
// points on the grid, and the restrained fit, all driven by the respyte
// scripts in a directory tree respyte prescribes.
type RespyteHandle struct {
	command    string //the python interpreter
	espGen     string //path to esp_generator.py
	respOpt    string //path to resp_optimizer.py
	wrkdir     string
	name       string
	chargetype string
	nconf      int
}

// NewRespyteHandle initializes and returns a respyte handle with its
// values set to their defaults.
func NewRespyteHandle() *RespyteHandle {
	O := new(RespyteHandle)
	O.SetDefaults()
	return O
}

// SetName sets the compound name. The calculation directory is named
// <name>-<chargetype>.
func (O *RespyteHandle) SetName(name string) {
	O.name = name
}

// SetCommand sets the python interpreter used to run the scripts.
func (O *RespyteHandle) SetCommand(name string) {
	O.command = name
}

// SetScripts sets the paths to the esp_generator and resp_optimizer
// scripts.
func (O *RespyteHandle) SetScripts(espgen, respopt string) {
	O.espGen = espgen
	O.respOpt = respopt
}

// SetWorkDir sets the directory under which the calculation tree is
// built.
func (O *RespyteHandle) SetWorkDir(d string) {
	O.wrkdir = d
}

// SetDefaults points the handle to the conventional respyte install
// location. Defaults are not part of the API.
func (O *RespyteHandle) SetDefaults() {
	O.command = "python"
	O.espGen = os.ExpandEnv("$HOME/programs/respyte/respyte/esp_generator.py")
	O.respOpt = os.ExpandEnv("$HOME/programs/respyte/respyte/resp_optimizer.py")
}

func (O *RespyteHandle) folder() string {
	return filepath.Join(O.wrkdir, O.name+"-"+O.chargetype)
}

// BuildInput builds the directory tree respyte expects, one conf<i>
// directory per conformer, and writes the input.yml and respyte.yml
// control files at the theory level the charge type implies.
func (O *RespyteHandle) BuildInput(chargetype string, nconf, netcharge int) error {
	errid := "RespyteHandle/BuildInput"
	method, basis, solvent, err := Theory(chargetype)
	if err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	if O.name == "" {
		return fmt.Errorf("%s: no compound name given", errid)
	}
	O.chargetype = chargetype
	O.nconf = nconf
	inputdir := filepath.Join(O.folder(), "input")
	for i := 1; i <= nconf; i++ {
		d := filepath.Join(inputdir, "molecules", "mol1", fmt.Sprintf("conf%d", i))
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("%s: %w", errid, err)
		}
	}
	pcm := "N"
	if solvent != "" {
		pcm = "Y"
	}
	esp := &espInput{
		Molecules:       map[string]int{"mol1": nconf},
		Charges:         map[string]int{"mol1": netcharge},
		Cheminformatics: "openeye",
		Grid: gridSetting{
			Forcegen: "Y",
			Type:     "msk",
			Radii:    "bondi",
			Method:   method,
			Basis:    basis,
			PCM:      pcm,
			Solvent:  solvent,
			Space:    0.4,
			Inner:    1.6,
			Outer:    2.1,
		},
	}
	if err := writeYAML(filepath.Join(inputdir, "input.yml"), esp); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	resp := &respInput{
		Molecules:       map[string]int{"mol1": nconf},
		Charges:         map[string]int{"mol1": netcharge},
		Cheminformatics: "openeye",
		Boundary:        boundarySelect{Radii: "bondi", Inner: 1.3, Outer: 2.1},
		Restraint: restraint{
			Penalty:  "2-stg-fit",
			Matrices: []string{"esp"},
			A1:       0.0005,
			A2:       0.001,
			B:        0.1,
		},
	}
	if err := writeYAML(filepath.Join(inputdir, "respyte.yml"), resp); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	return nil
}

func writeYAML(name string, data interface{}) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	err = enc.Encode(data)
	if err2 := enc.Close(); err == nil {
		err = err2
	}
	if err2 := f.Close(); err == nil {
		err = err2
	}
	return err
}

// CopyGeometries copies the optimized conformer geometries, in the
// order given, into the conf<i> directories, under the mol1_conf<i>.xyz
// names respyte looks for.
func (O *RespyteHandle) CopyGeometries(files []string) error {
	errid := "RespyteHandle/CopyGeometries"
	if len(files) != O.nconf {
		return fmt.Errorf("%s: %d geometries for %d conformer directories", errid, len(files), O.nconf)
	}
	for i, name := range files {
		dst := filepath.Join(O.folder(), "input", "molecules", "mol1",
			fmt.Sprintf("conf%d", i+1), fmt.Sprintf("mol1_conf%d.xyz", i+1))
		if err := copyFile(name, dst); err != nil {
			return fmt.Errorf("%s: %w", errid, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if err2 := out.Close(); err == nil {
		err = err2
	}
	return err
}

// Run removes leftover tmp directories from previous attempts and runs
// the grid generation and then the fit. It waits or not for the result
// depending on wait. Not waiting only works on unix-compatible systems,
// as it uses sh and nohup.
func (O *RespyteHandle) Run(wait bool) (err error) {
	errid := "RespyteHandle/Run"
	for i := 1; i <= O.nconf; i++ {
		tmp := filepath.Join(O.folder(), "input", "molecules", "mol1", fmt.Sprintf("conf%d", i), "tmp")
		os.RemoveAll(tmp)
	}
	com := fmt.Sprintf("%s %s && %s %s", O.command, O.espGen, O.command, O.respOpt)
	if wait {
		command := exec.Command("sh", "-c", com)
		command.Dir = O.folder()
		err = command.Run()
	} else {
		command := exec.Command("sh", "-c", "nohup "+com)
		command.Dir = O.folder()
		err = command.Start()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	return nil
}

// NormalTermination reports whether the QM single points behind the ESP
// grid ended normally for every conformer, and the name of the first
// conformer output that didn't.
func (O *RespyteHandle) NormalTermination() (bool, string) {
	for i := 1; i <= O.nconf; i++ {
		out := filepath.Join(O.folder(), "input", "molecules", "mol1",
			fmt.Sprintf("conf%d", i), "tmp", "output.dat")
		ok, err := hasMarker(out, "beer")
		if err != nil || !ok {
			return false, out
		}
	}
	return true, ""
}

// ChargeFile returns the name of the fitted-charge MOL2 respyte leaves
// behind, after checking it is actually there.
func (O *RespyteHandle) ChargeFile() (string, error) {
	errid := "RespyteHandle/ChargeFile"
	name := filepath.Join(O.folder(), "resp_output", "mol1_conf1.mol2")
	if _, err := os.Stat(name); err != nil {
		return "", fmt.Errorf("%s: no fitted charges found: %w", errid, err)
	}
	return name, nil
}

// Folder returns the directory of this fit, <wrkdir>/<name>-<type>.
// It is only meaningful after BuildInput.
func (O *RespyteHandle) Folder() string {
	return O.folder()
}

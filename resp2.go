/*
 * resp2.go, part of resp2.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package resp2

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmera/resp2/mol2"
	"github.com/rmera/resp2/qm"
	"github.com/rmera/resp2/xyz"
)

// RESP2 names the mixed gas/condensed charge scheme in the functions
// that take either it or qm.RESP1.
const RESP2 = "RESP2"

// Config collects the settings for the parameterization of one
// compound. The zero value plus a Name is usable; everything else has
// a default.
type Config struct {
	Name      string  //compound name, used to name the calculation folders
	Resname   string  //3-letter residue code written to the charge files
	SMILES    string  //used to build a structure when no mol2 is there
	Dir       string  //root for all output folders. Default "."
	Folder    string  //the target folder. Default <Name>-liquid
	Delta     float64 //mixing fraction, condensed-phase weight
	NetCharge int
	Optimize  bool //whether conformers get QM-optimized before the fit
	NCPU      int

	//Overrides for the external programs, empty means the default.
	Psi4    string
	Omega   string
	Obabel  string
	Python  string
	ESPGen  string
	RespOpt string
}

func (C *Config) resname() string {
	if C.Resname == "" {
		return "MOL"
	}
	return C.Resname
}

func (C *Config) dir() string {
	if C.Dir == "" {
		return "."
	}
	return C.Dir
}

// TargetDir returns the folder the charge files end up in.
func (C *Config) TargetDir() string {
	if C.Folder != "" {
		return filepath.Join(C.dir(), C.Folder)
	}
	return filepath.Join(C.dir(), C.Name+"-liquid")
}

// EnsureStructure makes sure the target folder holds a
// <resname>.mol2 starting structure, building one from the SMILES
// string if it has to.
func EnsureStructure(C *Config) error {
	errid := "resp2/EnsureStructure"
	folder := C.TargetDir()
	if err := os.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	infile := C.resname() + ".mol2"
	if _, err := os.Stat(filepath.Join(folder, infile)); err == nil {
		return nil
	}
	if C.SMILES == "" {
		return fmt.Errorf("%s: no %s in %s and no SMILES to build one", errid, infile, folder)
	}
	log.Printf("resp2: no %s found, building the molecule from its SMILES string", infile)
	B := qm.NewBabelHandle()
	if C.Obabel != "" {
		B.SetCommand(C.Obabel)
	}
	B.SetWorkDir(folder)
	if err := B.FromSMILES(C.SMILES, infile, C.resname()); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	return nil
}

// Conformers generates up to 5 low-energy conformers for the starting
// structure and leaves each one in its own MOL2 file in the target
// folder. It returns the file names, relative to that folder.
func Conformers(C *Config) ([]string, error) {
	errid := "resp2/Conformers"
	O := qm.NewOmegaHandle()
	if C.Omega != "" {
		O.SetCommand(C.Omega)
	}
	O.SetWorkDir(C.TargetDir())
	err := O.BuildInput(C.resname()+".mol2", C.resname()+"-conformers.mol2")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	if err := O.Run(true); err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	names, err := O.ConformerFiles(C.resname())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	log.Printf("resp2: created %d conformations for %s", len(names), C.Name)
	return names, nil
}

// OptimizeConformers converts the given conformer MOL2 files to XYZ
// and runs the stepwise Psi4 optimization on each. With C.Optimize
// false the optimization is omitted and the unoptimized geometries are
// copied under the optimized names instead. It returns the optimized
// geometry files, with paths including the target folder.
func OptimizeConformers(C *Config, confs []string) ([]string, error) {
	errid := "resp2/OptimizeConformers"
	folder := C.TargetDir()
	B := qm.NewBabelHandle()
	if C.Obabel != "" {
		B.SetCommand(C.Obabel)
	}
	B.SetWorkDir(folder)
	optnames := make([]string, 0, len(confs))
	for i, conf := range confs {
		base := strings.TrimSuffix(conf, ".mol2")
		if err := B.Convert(conf, base+".xyz"); err != nil {
			return nil, fmt.Errorf("%s: %w", errid, err)
		}
		optname := fmt.Sprintf("%s-conformers_opt_%d.xyz", C.resname(), i+1)
		optpath := filepath.Join(folder, optname)
		if !C.Optimize {
			if _, err := os.Stat(optpath); os.IsNotExist(err) {
				G, err := xyz.ReadFile(filepath.Join(folder, base+".xyz"))
				if err != nil {
					return nil, fmt.Errorf("%s: %w", errid, err)
				}
				if err := xyz.WriteFile(optpath, G); err != nil {
					return nil, fmt.Errorf("%s: %w", errid, err)
				}
			}
			optnames = append(optnames, optpath)
			continue
		}
		G, err := xyz.ReadFile(filepath.Join(folder, base+".xyz"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errid, err)
		}
		P := qm.NewPsi4Handle()
		if C.Psi4 != "" {
			P.SetCommand(C.Psi4)
		}
		if C.NCPU > 0 {
			P.SetnCPU(C.NCPU)
		}
		P.SetWorkDir(folder)
		P.SetName(base)
		Q := new(qm.Calc)
		Q.SetDefaults()
		Q.Charge = C.NetCharge
		if err := P.BuildInput(G, Q); err != nil {
			return nil, fmt.Errorf("%s: %w", errid, err)
		}
		if err := P.Run(true); err != nil {
			return nil, fmt.Errorf("%s: %w", errid, err)
		}
		G2, err := P.OptimizedGeometry()
		if err != nil {
			return nil, fmt.Errorf("%s: optimization of %s conformer %d failed: %w", errid, C.Name, i+1, err)
		}
		log.Printf("resp2: optimization of %s conformer %d successful", C.Name, i+1)
		if err := xyz.WriteFile(optpath, G2); err != nil {
			return nil, fmt.Errorf("%s: %w", errid, err)
		}
		optnames = append(optnames, optpath)
	}
	return optnames, nil
}

// FitCharges runs the whole ESP fit for one charge type: respyte tree,
// grid generation, the QM single points and the restrained fit. It
// returns the MOL2 file with the fitted charges.
func FitCharges(C *Config, chargetype string, optfiles []string) (string, error) {
	errid := "resp2/FitCharges"
	R := qm.NewRespyteHandle()
	R.SetName(C.Name)
	if C.Python != "" {
		R.SetCommand(C.Python)
	}
	if C.ESPGen != "" && C.RespOpt != "" {
		R.SetScripts(C.ESPGen, C.RespOpt)
	}
	R.SetWorkDir(C.dir())
	if err := R.BuildInput(chargetype, len(optfiles), C.NetCharge); err != nil {
		return "", fmt.Errorf("%s: %w", errid, err)
	}
	if err := R.CopyGeometries(optfiles); err != nil {
		return "", fmt.Errorf("%s: %w", errid, err)
	}
	if err := R.Run(true); err != nil {
		return "", fmt.Errorf("%s: %w", errid, err)
	}
	if ok, out := R.NormalTermination(); !ok {
		return "", fmt.Errorf("%s: ESP calculation for %s failed, check %s", errid, C.Name, out)
	}
	log.Printf("resp2: ESP calculation for %s (%s) successful", C.Name, chargetype)
	return R.ChargeFile()
}

// respytOutput returns the fitted-charge file a previous fit of the
// given charge type left behind.
func respytOutput(C *Config, chargetype string) string {
	return filepath.Join(C.dir(), C.Name+"-"+chargetype, "resp_output", "mol1_conf1.mol2")
}

// ChargeFile reads the fitted charges of previous ESP fits and writes
// the final charge file into the target folder: either RESP1 charges
// scaled by delta, or the RESP2 mix of the gas-phase and
// condensed-phase sets with condensed-phase weight delta. The file is
// named <resname>_R1_<delta*100>.mol2 or <resname>_R2_<delta*100>.mol2
// and carries the residue code in every atom line. It returns the name
// of the file written.
func ChargeFile(C *Config, chargetype string) (string, error) {
	errid := "resp2/ChargeFile"
	resname := C.resname()
	var M *mol2.Molecule
	var charges []float64
	var out string
	switch chargetype {
	case qm.RESP1:
		var err error
		M, err = mol2.ReadFile(respytOutput(C, qm.RESP1))
		if err != nil {
			return "", fmt.Errorf("%s: %w", errid, err)
		}
		charges = mol2.Scale(M.Charges(), C.Delta)
		out = filepath.Join(C.TargetDir(), fmt.Sprintf("%s_R1_%d.mol2", resname, int(C.Delta*100)))
	case RESP2:
		var err error
		M, charges, err = mol2.MixFiles(respytOutput(C, qm.RESP2Gas), respytOutput(C, qm.RESP2Liquid), C.Delta)
		if err != nil {
			return "", fmt.Errorf("%s: %w", errid, err)
		}
		out = filepath.Join(C.TargetDir(), fmt.Sprintf("%s_R2_%d.mol2", resname, int(C.Delta*100)))
	default:
		return "", fmt.Errorf("%s: %w: %s (only %s and %s produce charge files)", errid, qm.ErrUnknownChargeType, chargetype, qm.RESP1, RESP2)
	}
	if err := mol2.WriteChargesFile(out, M, charges, resname); err != nil {
		return "", fmt.Errorf("%s: %w", errid, err)
	}
	log.Printf("resp2: created %s type charges with a delta value of %v in %s", chargetype, C.Delta, out)
	return out, nil
}

// CreateRESP2 runs the full parameterization: starting structure,
// conformers, optimization, the three ESP fits and the final RESP2
// charge file, whose name it returns.
func CreateRESP2(C *Config) (string, error) {
	errid := "resp2/CreateRESP2"
	if C.Name == "" {
		return "", errors.New(errid + ": the configuration needs a compound name")
	}
	if err := EnsureStructure(C); err != nil {
		return "", fmt.Errorf("%s: %w", errid, err)
	}
	confs, err := Conformers(C)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errid, err)
	}
	opt, err := OptimizeConformers(C, confs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errid, err)
	}
	for _, ct := range []string{qm.RESP2Liquid, qm.RESP2Gas, qm.RESP1} {
		if _, err := FitCharges(C, ct, opt); err != nil {
			return "", fmt.Errorf("%s: %w", errid, err)
		}
	}
	return ChargeFile(C, RESP2)
}

// CreateRESP1 is like CreateRESP2 but fits only vacuum RESP1 charges
// and scales them by delta. Only neutral molecules should use this.
func CreateRESP1(C *Config) (string, error) {
	errid := "resp2/CreateRESP1"
	if C.Name == "" {
		return "", errors.New(errid + ": the configuration needs a compound name")
	}
	if err := EnsureStructure(C); err != nil {
		return "", fmt.Errorf("%s: %w", errid, err)
	}
	confs, err := Conformers(C)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errid, err)
	}
	opt, err := OptimizeConformers(C, confs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errid, err)
	}
	if _, err := FitCharges(C, qm.RESP1, opt); err != nil {
		return "", fmt.Errorf("%s: %w", errid, err)
	}
	return ChargeFile(C, qm.RESP1)
}

/*
 * main.go, part of resp2.
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

/*To the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche*/

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rmera/resp2"
	"github.com/rmera/resp2/mol2"
	"github.com/rmera/resp2/qm"
	"github.com/rmera/resp2/target"
)

func main() {
	name := flag.String("name", "", "Name of the compound, used to name the calculation folders")
	resname := flag.String("resname", "MOL", "3-letter residue code written to the charge files")
	smiles := flag.String("smiles", "", "SMILES string to build the molecule from, when no mol2 file is present")
	dir := flag.String("dir", "", "Root directory for the calculation folders (default the current one)")
	folder := flag.String("folder", "", "Target folder for the charge files (default <name>-liquid)")
	delta := flag.Float64("delta", 1.0, "Mixing fraction, i.e. the weight of the condensed-phase charges")
	charge := flag.Int("c", 0, "Net charge of the molecule")
	multi := flag.Int("m", 1, "Multiplicity of the molecule") //only 1 is really supported downstream
	noopt := flag.Bool("noopt", false, "Skip the QM optimization of the conformers")
	ncpu := flag.Int("ncpu", 0, "CPUs for the QM programs (default half the machine's)")
	resp1 := flag.Bool("resp1", false, "Fit only vacuum RESP1 charges and scale them by delta")
	gasfile := flag.String("gas", "", "Mix-only mode: mol2 file with the gas-phase charges")
	liquidfile := flag.String("liquid", "", "Mix-only mode: mol2 file with the condensed-phase charges")
	scalefile := flag.String("scale", "", "Scale-only mode: mol2 file whose charges get scaled by delta")
	outfile := flag.String("o", "", "Output file for the mix-only and scale-only modes")
	plotname := flag.String("plot", "", "Also save a per-atom charge plot with the given file name")
	density := flag.Float64("density", 0, "Liquid density in kg/m3, written to the target's data.csv")
	hov := flag.Float64("hov", 0, "Heat of vaporization in kcal/mol, written to the target's data.csv")
	eps := flag.Float64("eps", 0, "Dielectric constant, written to the target's data.csv")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage:\n  %s [flags]\n\nRuns the full RESP2 parameterization for -name, or, with -gas/-liquid\nor -scale, only the final charge mixing/scaling on already-fitted files.\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *multi != 1 {
		log.Fatal("resp2: only singlet molecules are supported")
	}
	switch {
	case *gasfile != "" || *liquidfile != "":
		if *gasfile == "" || *liquidfile == "" {
			log.Fatal("resp2: the mix-only mode needs both -gas and -liquid")
		}
		mixOnly(*gasfile, *liquidfile, *outfile, *resname, *delta, *plotname)
	case *scalefile != "":
		scaleOnly(*scalefile, *outfile, *resname, *delta, *plotname)
	default:
		if *name == "" {
			log.Fatal("resp2: a compound name is required (-name), or -gas/-liquid or -scale for the file-only modes")
		}
		C := &resp2.Config{
			Name:      *name,
			Resname:   *resname,
			SMILES:    *smiles,
			Dir:       *dir,
			Folder:    *folder,
			Delta:     *delta,
			NetCharge: *charge,
			Optimize:  !*noopt,
			NCPU:      *ncpu,
		}
		pipeline(C, *resp1, *plotname, *density, *hov, *eps)
	}
}

// the full parameterization, from a mol2 or SMILES to the charge file.
func pipeline(C *resp2.Config, resp1only bool, plotname string, density, hov, eps float64) {
	if density > 0 {
		d := &target.Data{Density: density, HoV: hov, Dielectric: eps}
		if _, err := target.Scaffold(C.TargetDir(), C.Name, C.Resname, C.SMILES, d); err != nil {
			log.Fatal(err)
		}
	}
	var out string
	var err error
	if resp1only {
		out, err = resp2.CreateRESP1(C)
	} else {
		out, err = resp2.CreateRESP2(C)
	}
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Charge file written to", out)
	if plotname == "" {
		return
	}
	M, err := mol2.ReadFile(out)
	if err != nil {
		log.Fatal(err)
	}
	sets := []resp2.ChargeSet{{Label: "Final", Charges: M.Charges()}}
	if !resp1only {
		for _, ct := range []string{qm.RESP2Gas, qm.RESP2Liquid} {
			f := filepath.Join(C.Dir, C.Name+"-"+ct, "resp_output", "mol1_conf1.mol2")
			F, err := mol2.ReadFile(f)
			if err != nil {
				log.Fatal(err)
			}
			sets = append(sets, resp2.ChargeSet{Label: ct, Charges: F.Charges()})
		}
	}
	if err := resp2.ChargePlot(plotname, sets...); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Charge plot written to", plotname)
}

func mixOnly(gasfile, liquidfile, outfile, resname string, delta float64, plotname string) {
	M, mixed, err := mol2.MixFiles(gasfile, liquidfile, delta)
	if err != nil {
		log.Fatal(err)
	}
	if outfile == "" {
		outfile = fmt.Sprintf("%s_R2_%d.mol2", resname, int(delta*100))
	}
	if err := mol2.WriteChargesFile(outfile, M, mixed, resname); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Mixed charge file written to", outfile)
	if plotname == "" {
		return
	}
	G, err := mol2.ReadFile(gasfile)
	if err != nil {
		log.Fatal(err)
	}
	L, err := mol2.ReadFile(liquidfile)
	if err != nil {
		log.Fatal(err)
	}
	err = resp2.ChargePlot(plotname,
		resp2.ChargeSet{Label: "Gas", Charges: G.Charges()},
		resp2.ChargeSet{Label: "Liquid", Charges: L.Charges()},
		resp2.ChargeSet{Label: "Mixed", Charges: mixed},
	)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Charge plot written to", plotname)
}

func scaleOnly(infile, outfile, resname string, delta float64, plotname string) {
	M, err := mol2.ReadFile(infile)
	if err != nil {
		log.Fatal(err)
	}
	scaled := mol2.Scale(M.Charges(), delta)
	if outfile == "" {
		outfile = fmt.Sprintf("%s_R1_%d.mol2", resname, int(delta*100))
	}
	if err := mol2.WriteChargesFile(outfile, M, scaled, resname); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Scaled charge file written to", outfile)
	if plotname == "" {
		return
	}
	err = resp2.ChargePlot(plotname,
		resp2.ChargeSet{Label: "Fitted", Charges: M.Charges()},
		resp2.ChargeSet{Label: "Scaled", Charges: scaled},
	)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Charge plot written to", plotname)
}

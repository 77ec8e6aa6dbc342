/*
 * resp2_test.go, part of resp2.
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

//These tests run the charge-file generation against pre-baked fitted
//charges, so none of the external programs is needed.

package resp2

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/resp2/mol2"
	"github.com/rmera/resp2/qm"
)

const fittedMol2 = `@<TRIPOS>MOLECULE
mol1_conf1
     2     1     1
SMALL
USER_CHARGES
@<TRIPOS>ATOM
      1 C            0.0000    0.0000    0.0000 C.3       1  UNL       %6.4f
      2 O            1.4300    0.0000    0.0000 O.3       1  UNL      %6.4f
@<TRIPOS>BOND
     1     1     2    1
`

// lays out the resp_output trees of previous fits, with the given
// charges, for the charge types wanted.
func scaffoldFits(Te *testing.T, dir, name string, charges map[string][2]float64) {
	for chargetype, qs := range charges {
		d := filepath.Join(dir, name+"-"+chargetype, "resp_output")
		if err := os.MkdirAll(d, 0755); err != nil {
			Te.Fatal(err)
		}
		content := fmt.Sprintf(fittedMol2, qs[0], qs[1])
		if err := os.WriteFile(filepath.Join(d, "mol1_conf1.mol2"), []byte(content), 0644); err != nil {
			Te.Fatal(err)
		}
	}
}

func TestChargeFileRESP2(Te *testing.T) {
	os.MkdirAll("test", 0755)
	defer os.RemoveAll("test/met-RESP2GAS")
	defer os.RemoveAll("test/met-RESP2LIQUID")
	defer os.RemoveAll("test/met-liquid")
	scaffoldFits(Te, "test", "met", map[string][2]float64{
		qm.RESP2Gas:    {0.5, -0.5},
		qm.RESP2Liquid: {0.7, -0.7},
	})
	C := &Config{Name: "met", Resname: "MET", Dir: "test", Delta: 0.5}
	if err := os.MkdirAll(C.TargetDir(), 0755); err != nil {
		Te.Fatal(err)
	}
	out, err := ChargeFile(C, RESP2)
	if err != nil {
		Te.Fatal(err)
	}
	if filepath.Base(out) != "MET_R2_50.mol2" {
		Te.Errorf("Wrong charge-file name: %s", out)
	}
	M, err := mol2.ReadFile(out)
	if err != nil {
		Te.Fatal(err)
	}
	qs := M.Charges()
	if math.Abs(qs[0]-0.6) > 1e-6 || math.Abs(qs[1]+0.6) > 1e-6 {
		Te.Errorf("Wrong mixed charges: %v", qs)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		Te.Fatal(err)
	}
	if !strings.Contains(string(b), "0.6000") || !strings.Contains(string(b), "-0.6000") {
		Te.Error("Mixed charges not written to 4 decimals")
	}
	if strings.Contains(string(b), "UNL") {
		Te.Error("Residue code not substituted everywhere")
	}
	fmt.Println("RESP2 charge file written to", out)
}

func TestChargeFileRESP1(Te *testing.T) {
	os.MkdirAll("test", 0755)
	defer os.RemoveAll("test/met-RESP1")
	defer os.RemoveAll("test/met-liquid")
	scaffoldFits(Te, "test", "met", map[string][2]float64{
		qm.RESP1: {0.5, -0.5},
	})
	C := &Config{Name: "met", Resname: "MET", Dir: "test", Delta: 0.8}
	if err := os.MkdirAll(C.TargetDir(), 0755); err != nil {
		Te.Fatal(err)
	}
	out, err := ChargeFile(C, qm.RESP1)
	if err != nil {
		Te.Fatal(err)
	}
	if filepath.Base(out) != "MET_R1_80.mol2" {
		Te.Errorf("Wrong charge-file name: %s", out)
	}
	M, err := mol2.ReadFile(out)
	if err != nil {
		Te.Fatal(err)
	}
	qs := M.Charges()
	if math.Abs(qs[0]-0.4) > 1e-6 || math.Abs(qs[1]+0.4) > 1e-6 {
		Te.Errorf("Wrong scaled charges: %v", qs)
	}
}

func TestChargeFileUnknownType(Te *testing.T) {
	C := &Config{Name: "met", Dir: "test"}
	if _, err := ChargeFile(C, "RESP3"); err == nil {
		Te.Error("Wanted an error for an unknown charge type")
	}
}

func TestTargetDir(Te *testing.T) {
	C := &Config{Name: "methanol"}
	if C.TargetDir() != filepath.Join(".", "methanol-liquid") {
		Te.Errorf("Wrong default target dir: %s", C.TargetDir())
	}
	C.Folder = "custom"
	C.Dir = "/tmp/para"
	if C.TargetDir() != "/tmp/para/custom" {
		Te.Errorf("Wrong explicit target dir: %s", C.TargetDir())
	}
}

func TestChargePlot(Te *testing.T) {
	os.MkdirAll("test", 0755)
	gas := []float64{0.5, -0.5, 0.1, -0.1}
	liquid := []float64{0.7, -0.7, 0.2, -0.2}
	mixed, err := mol2.Mix(gas, liquid, 0.6)
	if err != nil {
		Te.Fatal(err)
	}
	name := "test/charges.png"
	err = ChargePlot(name,
		ChargeSet{"Gas", gas},
		ChargeSet{"Liquid", liquid},
		ChargeSet{"Mixed", mixed},
	)
	if err != nil {
		Te.Fatal(err)
	}
	defer os.Remove(name)
	if _, err := os.Stat(name); err != nil {
		Te.Errorf("No plot written: %v", err)
	}
	if err := ChargePlot("test/empty.png"); err == nil {
		Te.Error("Wanted an error for a plot with no charge sets")
	}
}

/*
 * qm_test.go, part of resp2.
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

//These tests only build inputs and parse outputs; none of them needs
//the external programs installed.

package qm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/rmera/resp2/xyz"
	"gopkg.in/yaml.v3"
)

func TestTheory(Te *testing.T) {
	method, basis, solvent, err := Theory(RESP1)
	if err != nil || method != "HF" || basis != "6-31G*" || solvent != "" {
		Te.Errorf("Wrong RESP1 theory: %s/%s pcm:%q %v", method, basis, solvent, err)
	}
	method, _, solvent, err = Theory(RESP2Liquid)
	if err != nil || method != "PW6B95" || solvent != "water" {
		Te.Errorf("Wrong RESP2LIQUID theory: %s pcm:%q %v", method, solvent, err)
	}
	_, _, _, err = Theory("RESP3")
	if !errors.Is(err, ErrUnknownChargeType) {
		Te.Errorf("Wanted ErrUnknownChargeType, got %v", err)
	}
}

func TestMarkers(Te *testing.T) {
	os.MkdirAll("test", 0755)
	name := "test/fake.out"
	content := "some header\nlots of science\nPsi4 exiting successfully. Buy a developer a beer!\n"
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		Te.Fatal(err)
	}
	defer os.Remove(name)
	ok, err := hasMarker(name, "beer")
	if err != nil || !ok {
		Te.Errorf("Marker not found in plain output: %v", err)
	}
	ok, err = hasMarker(name, "wine")
	if err != nil || ok {
		Te.Errorf("Found a marker that isn't there: %v", err)
	}
	//now the same output, but compressed after the run
	gzname := "test/old.out"
	f, err := os.Create(gzname + ".gz")
	if err != nil {
		Te.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	gz.Write([]byte(content))
	gz.Close()
	f.Close()
	defer os.Remove(gzname + ".gz")
	ok, err = hasMarker(gzname, "beer")
	if err != nil || !ok {
		Te.Errorf("Marker not found in gzipped output: %v", err)
	}
}

func TestPsi4BuildInput(Te *testing.T) {
	os.MkdirAll("test", 0755)
	G, err := xyz.Read(strings.NewReader("2\nCO\nC 0.0 0.0 0.0\nO 1.43 0.0 0.0\n"))
	if err != nil {
		Te.Fatal(err)
	}
	P := NewPsi4Handle()
	P.SetWorkDir("test")
	P.SetName("co-conformers_1")
	Q := new(Calc)
	Q.SetDefaults()
	if err := P.BuildInput(G, Q); err != nil {
		Te.Fatal(err)
	}
	defer os.Remove("test/co-conformers_1.in")
	b, err := os.ReadFile("test/co-conformers_1.in")
	if err != nil {
		Te.Fatal(err)
	}
	in := string(b)
	for _, want := range []string{
		"memory 12 gb",
		"noreorient",
		"nocom",
		"0 1",
		"set basis 6-31G*\noptimize('HF')",
		"set basis cc-pV(D+d)Z\noptimize('HF')",
		"set basis cc-pV(D+d)Z\noptimize('PW6B95')",
		"mol.save_xyz_file('co-conformers_1_opt.xyz',True)",
	} {
		if !strings.Contains(in, want) {
			Te.Errorf("Psi4 input misses %q:\n%s", want, in)
		}
	}
	if n := strings.Count(in, "optimize("); n != 3 {
		Te.Errorf("Psi4 input has %d optimization steps, wanted 3", n)
	}
	fmt.Println("Psi4 input built")
}

func TestPsi4Energy(Te *testing.T) {
	os.MkdirAll("test", 0755)
	out := "test/ener.out"
	//the energy of the last step sits a few lines above the end of the
	//output, with earlier steps reporting their own energies before it,
	//so the scan must check every line and return the last occurrence.
	content := "lots of iterations\n    Final energy is   -114.992000000\nmore iterations\n    Final energy is   -115.045123456\n\n    Cleaning up\nPsi4 exiting successfully. Buy a developer a beer!\n"
	if err := os.WriteFile(out, []byte(content), 0644); err != nil {
		Te.Fatal(err)
	}
	defer os.Remove(out)
	P := NewPsi4Handle()
	P.SetWorkDir("test/")
	P.SetName("ener")
	energy, err := P.Energy()
	if err != nil {
		Te.Fatal(err)
	}
	want := -115.045123456 * 627.509
	if energy < want-0.001 || energy > want+0.001 {
		Te.Errorf("Got %f kcal/mol, wanted %f", energy, want)
	}
	//an energy line at the very start of the file must be found too
	first := "    Final energy is   -115.045123456\nPsi4 exiting successfully. Buy a developer a beer!\n"
	if err := os.WriteFile(out, []byte(first), 0644); err != nil {
		Te.Fatal(err)
	}
	if _, err := P.Energy(); err != nil {
		Te.Errorf("Energy in the first line of the output not found: %v", err)
	}
}

func TestPsi4EnergyGzip(Te *testing.T) {
	os.MkdirAll("test", 0755)
	content := "    Final energy is   -114.992000000\n    Final energy is   -115.045123456\nPsi4 exiting successfully. Buy a developer a beer!\n"
	f, err := os.Create("test/old-ener.out.gz")
	if err != nil {
		Te.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	gz.Write([]byte(content))
	gz.Close()
	f.Close()
	defer os.Remove("test/old-ener.out.gz")
	P := NewPsi4Handle()
	P.SetWorkDir("test/")
	P.SetName("old-ener")
	if !P.normalTermination() {
		Te.Error("Gzipped output not seen as normal termination")
	}
	energy, err := P.Energy()
	if err != nil {
		Te.Fatal(err)
	}
	want := -115.045123456 * 627.509
	if energy < want-0.001 || energy > want+0.001 {
		Te.Errorf("Got %f kcal/mol from the gzipped output, wanted %f", energy, want)
	}
}

func TestRespyteBuildInput(Te *testing.T) {
	os.MkdirAll("test", 0755)
	R := NewRespyteHandle()
	R.SetWorkDir("test")
	R.SetName("methanol")
	if err := R.BuildInput(RESP2Liquid, 2, 0); err != nil {
		Te.Fatal(err)
	}
	defer os.RemoveAll("test/methanol-RESP2LIQUID")
	for i := 1; i <= 2; i++ {
		d := filepath.Join("test", "methanol-RESP2LIQUID", "input", "molecules", "mol1", fmt.Sprintf("conf%d", i))
		if _, err := os.Stat(d); err != nil {
			Te.Errorf("Conformer directory not built: %v", err)
		}
	}
	b, err := os.ReadFile(filepath.Join("test", "methanol-RESP2LIQUID", "input", "input.yml"))
	if err != nil {
		Te.Fatal(err)
	}
	var esp espInput
	if err := yaml.Unmarshal(b, &esp); err != nil {
		Te.Fatalf("input.yml doesn't parse back: %v", err)
	}
	if esp.Molecules["mol1"] != 2 || esp.Grid.Method != "PW6B95" || esp.Grid.PCM != "Y" || esp.Grid.Solvent != "water" {
		Te.Errorf("Wrong input.yml content: %+v", esp)
	}
	b, err = os.ReadFile(filepath.Join("test", "methanol-RESP2LIQUID", "input", "respyte.yml"))
	if err != nil {
		Te.Fatal(err)
	}
	var resp respInput
	if err := yaml.Unmarshal(b, &resp); err != nil {
		Te.Fatalf("respyte.yml doesn't parse back: %v", err)
	}
	if resp.Restraint.Penalty != "2-stg-fit" || len(resp.Restraint.Matrices) != 1 {
		Te.Errorf("Wrong respyte.yml content: %+v", resp)
	}
	//an unknown charge type must be refused before any directory is made
	R2 := NewRespyteHandle()
	R2.SetWorkDir("test")
	R2.SetName("methanol")
	if err := R2.BuildInput("RESP3", 1, 0); !errors.Is(err, ErrUnknownChargeType) {
		Te.Errorf("Wanted ErrUnknownChargeType, got %v", err)
	}
}

func TestRespyteGeometries(Te *testing.T) {
	os.MkdirAll("test", 0755)
	R := NewRespyteHandle()
	R.SetWorkDir("test")
	R.SetName("co")
	if err := R.BuildInput(RESP1, 1, 0); err != nil {
		Te.Fatal(err)
	}
	defer os.RemoveAll("test/co-RESP1")
	src := "test/co-conformers_opt_1.xyz"
	if err := os.WriteFile(src, []byte("2\nCO\nC 0.0 0.0 0.0\nO 1.43 0.0 0.0\n"), 0644); err != nil {
		Te.Fatal(err)
	}
	defer os.Remove(src)
	if err := R.CopyGeometries([]string{src}); err != nil {
		Te.Fatal(err)
	}
	dst := filepath.Join("test", "co-RESP1", "input", "molecules", "mol1", "conf1", "mol1_conf1.xyz")
	if _, err := os.Stat(dst); err != nil {
		Te.Errorf("Geometry not copied into the respyte tree: %v", err)
	}
	if err := R.CopyGeometries([]string{src, src}); err == nil {
		Te.Error("Wanted an error for 2 geometries and 1 conformer directory")
	}
}

func TestOmegaConformerFiles(Te *testing.T) {
	os.MkdirAll("test", 0755)
	multi := `@<TRIPOS>MOLECULE
MET
     2     1     1
SMALL
USER_CHARGES
@<TRIPOS>ATOM
      1 C  0.0 0.0 0.0 C.3 1 UNL 0.0
      2 O  1.4 0.0 0.0 O.3 1 UNL 0.0
@<TRIPOS>BOND
     1     1     2    1
@<TRIPOS>MOLECULE
MET
     2     1     1
SMALL
USER_CHARGES
@<TRIPOS>ATOM
      1 C  0.0 0.0 0.1 C.3 1 UNL 0.0
      2 O  1.4 0.0 0.1 O.3 1 UNL 0.0
@<TRIPOS>BOND
     1     1     2    1
`
	if err := os.WriteFile("test/MET-conformers.mol2", []byte(multi), 0644); err != nil {
		Te.Fatal(err)
	}
	defer os.Remove("test/MET-conformers.mol2")
	if err := os.WriteFile("test/MET.mol2", []byte("@<TRIPOS>MOLECULE\nMET\n"), 0644); err != nil {
		Te.Fatal(err)
	}
	defer os.Remove("test/MET.mol2")
	O := NewOmegaHandle()
	O.SetWorkDir("test")
	if err := O.BuildInput("MET.mol2", "MET-conformers.mol2"); err != nil {
		Te.Fatal(err)
	}
	names, err := O.ConformerFiles("MET")
	if err != nil {
		Te.Fatal(err)
	}
	if len(names) != 2 {
		Te.Fatalf("Got %d conformer files, wanted 2", len(names))
	}
	for _, name := range names {
		defer os.Remove("test/" + name)
		b, err := os.ReadFile("test/" + name)
		if err != nil {
			Te.Fatal(err)
		}
		if c := strings.Count(string(b), "@<TRIPOS>MOLECULE"); c != 1 {
			Te.Errorf("Conformer file %s holds %d molecules, wanted 1", name, c)
		}
	}
	fmt.Println("Conformer files:", names)
}

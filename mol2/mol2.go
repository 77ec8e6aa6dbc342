/*
 * mol2.go, part of resp2.
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

package mol2

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Section markers of the TRIPOS MOL2 format. Only these two are
// interpreted; everything between them is an atom record and everything
// from the bond marker on is carried verbatim.
const (
	atomMark = "@<TRIPOS>ATOM"
	bondMark = "@<TRIPOS>BOND"
)

var (
	//ErrNoAtomSection is returned when a file contains no @<TRIPOS>ATOM marker.
	//Resp fitting programs have been seen to produce such files on failed runs,
	//so this is reported instead of returning a molecule with zero atoms.
	ErrNoAtomSection = errors.New("no @<TRIPOS>ATOM section found")
	//ErrMalformedAtom is returned when a line in the atom section doesn't
	//have at least the 9 fields of a MOL2 atom record, or when a numeric
	//field can't be parsed.
	ErrMalformedAtom = errors.New("malformed atom line")
	//ErrChargeMismatch is returned whenever two charge sets, or a charge set
	//and the atoms it should be applied to, differ in length.
	ErrChargeMismatch = errors.New("mismatched number of charges")
)

// An Atom is one record of the @<TRIPOS>ATOM section. The numeric fields
// are parsed for convenience, but the original tokens are kept so geometry
// and type columns can be re-emitted exactly as read.
type Atom struct {
	ID        int
	Name      string
	X, Y, Z   float64
	Type      string
	SubstID   int
	SubstName string
	Charge    float64

	fields []string //the whitespace-separated tokens, as read
}

// A Molecule is the content of one MOL2 file: the header lines before the
// atom section, the atoms, and everything from the bond section on.
// Header and trailer lines keep their original line terminators.
type Molecule struct {
	header  []string
	marker  string //the @<TRIPOS>ATOM line, verbatim
	Atoms   []*Atom
	trailer []string
}

// Len returns the number of atoms in the molecule.
func (M *Molecule) Len() int {
	return len(M.Atoms)
}

// Charges returns the partial charges of the molecule, in atom order.
func (M *Molecule) Charges() []float64 {
	qs := make([]float64, 0, len(M.Atoms))
	for _, at := range M.Atoms {
		qs = append(qs, at.Charge)
	}
	return qs
}

// TotalCharge returns the sum of the partial charges of the molecule.
func (M *Molecule) TotalCharge() float64 {
	return floats.Sum(M.Charges())
}

// Title returns the molecule-name line of the header (the second line of
// a well formed file), without its line terminator. It returns an empty
// string if the header is too short.
func (M *Molecule) Title() string {
	if len(M.header) < 2 {
		return ""
	}
	return strings.TrimRight(M.header[1], "\r\n")
}

const (
	inHeader = iota
	inAtoms
	inTrailer
)

// Read parses a TRIPOS MOL2 molecule from r. Only the atom records are
// interpreted; header and bond/substructure sections are stored verbatim.
// A reader with no atom section yields an error wrapping ErrNoAtomSection.
func Read(r io.Reader) (*Molecule, error) {
	errid := "mol2/Read"
	M := new(Molecule)
	buf := bufio.NewReader(r)
	state := inHeader
	nline := 0
	var err error
	var line string
	for {
		line, err = buf.ReadString('\n')
		if line == "" && err != nil {
			break
		}
		nline++
		switch {
		case state == inHeader && strings.Contains(line, atomMark):
			state = inAtoms
			M.marker = line
		case state == inAtoms && strings.Contains(line, bondMark):
			state = inTrailer
			M.trailer = append(M.trailer, line)
		case state == inHeader:
			M.header = append(M.header, line)
		case state == inAtoms:
			at, err2 := parseAtom(line)
			if err2 != nil {
				return nil, fmt.Errorf("%s: line %d: %w", errid, nline, err2)
			}
			M.Atoms = append(M.Atoms, at)
		default:
			M.trailer = append(M.trailer, line)
		}
		if err != nil {
			break
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	if state == inHeader {
		return nil, fmt.Errorf("%s: %w", errid, ErrNoAtomSection)
	}
	return M, nil
}

// ReadFile parses the TRIPOS MOL2 file with the given name.
func ReadFile(name string) (*Molecule, error) {
	errid := "mol2/ReadFile"
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	defer f.Close()
	M, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", errid, name, err)
	}
	return M, nil
}

func parseAtom(line string) (*Atom, error) {
	f := strings.Fields(line)
	if len(f) < 9 {
		return nil, fmt.Errorf("%w: %d fields in %q", ErrMalformedAtom, len(f), strings.TrimRight(line, "\r\n"))
	}
	at := new(Atom)
	at.fields = f
	at.Name = f[1]
	at.Type = f[5]
	at.SubstName = f[7]
	//errors are accumulated and checked once per line.
	errs := make([]error, 6)
	at.ID, errs[0] = strconv.Atoi(f[0])
	at.X, errs[1] = strconv.ParseFloat(f[2], 64)
	at.Y, errs[2] = strconv.ParseFloat(f[3], 64)
	at.Z, errs[3] = strconv.ParseFloat(f[4], 64)
	at.SubstID, errs[4] = strconv.Atoi(f[6])
	at.Charge, errs[5] = strconv.ParseFloat(f[8], 64)
	for _, e := range errs {
		if e != nil {
			return nil, fmt.Errorf("%w: %v in %q", ErrMalformedAtom, e, strings.TrimRight(line, "\r\n"))
		}
	}
	return at, nil
}

// Molecule-name lines produced by the upstream tools, which get replaced
// by the residue name on writing.
var titlePlaceholders = []string{"***", "resp_gas", "mol1_conf1"}

func placeholderTitle(line string) bool {
	for _, p := range titlePlaceholders {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// WriteCharges writes M to w with its charges replaced by the given set
// and its substructure-name column replaced by resname. Header and
// bond/trailer sections are emitted byte-identical to the input, except
// for tool-generated placeholder titles, which become resname. The
// charges must be in atom order and there must be exactly one per atom.
func WriteCharges(w io.Writer, M *Molecule, charges []float64, resname string) error {
	errid := "mol2/WriteCharges"
	if len(charges) != M.Len() {
		return fmt.Errorf("%s: %w: %d charges for %d atoms", errid, ErrChargeMismatch, len(charges), M.Len())
	}
	bw := bufio.NewWriter(w)
	for i, line := range M.header {
		if i == 1 && placeholderTitle(line) {
			fmt.Fprintf(bw, "%s\n", resname)
			continue
		}
		bw.WriteString(line)
	}
	bw.WriteString(M.marker)
	for i, at := range M.Atoms {
		f := at.fields
		fmt.Fprintf(bw, "%7s %-3s%15s%10s%10s %-3s%8s%5s%14.4f \n",
			f[0], f[1], f[2], f[3], f[4], f[5], f[6], resname, charges[i])
	}
	for _, line := range M.trailer {
		bw.WriteString(line)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	return nil
}

// WriteChargesFile is like WriteCharges but writes to the file with the
// given name. The file is written to a temporary name in the same
// directory and renamed into place on success, so a failed write never
// leaves a truncated MOL2 behind.
func WriteChargesFile(name string, M *Molecule, charges []float64, resname string) error {
	errid := "mol2/WriteChargesFile"
	tmp, err := os.CreateTemp(filepath.Dir(name), filepath.Base(name)+".tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	err = WriteCharges(tmp, M, charges, resname)
	if err2 := tmp.Close(); err == nil {
		err = err2
	}
	if err == nil {
		err = os.Rename(tmp.Name(), name)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%s: %s: %w", errid, name, err)
	}
	return nil
}

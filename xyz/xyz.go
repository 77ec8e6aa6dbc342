/*
 * xyz.go, part of resp2.
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

//Package xyz reads and writes XYZ geometry files, the exchange format
//between the conformer generator, the QM program and the ESP fitter.
package xyz

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// A Geometry is the content of one XYZ file: element symbols, Cartesian
// coordinates in Angstrom (one row per atom) and the comment line.
type Geometry struct {
	Symbols []string
	Coords  *mat.Dense
	Comment string
}

// Len returns the number of atoms in the geometry.
func (G *Geometry) Len() int {
	return len(G.Symbols)
}

// Read parses an XYZ geometry from r.
func Read(r io.Reader) (*Geometry, error) {
	errid := "xyz/Read"
	buf := bufio.NewReader(r)
	line, err := buf.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("%s: bad atom-count line %q: %w", errid, strings.TrimSpace(line), err)
	}
	G := new(Geometry)
	line, err = buf.ReadString('\n')
	if err != nil && natoms > 0 {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	G.Comment = strings.TrimRight(line, "\r\n")
	G.Symbols = make([]string, natoms)
	coords := make([]float64, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err = buf.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			return nil, fmt.Errorf("%s: atom %d: %w", errid, i+1, err)
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("%s: atom line %d ill formed: %q", errid, i+1, strings.TrimRight(line, "\r\n"))
		}
		G.Symbols[i] = fields[0]
		errs := make([]error, 3)
		coords[i*3], errs[0] = strconv.ParseFloat(fields[1], 64)
		coords[i*3+1], errs[1] = strconv.ParseFloat(fields[2], 64)
		coords[i*3+2], errs[2] = strconv.ParseFloat(fields[3], 64)
		for _, e := range errs {
			if e != nil {
				return nil, fmt.Errorf("%s: atom line %d: %w", errid, i+1, e)
			}
		}
	}
	G.Coords = mat.NewDense(natoms, 3, coords)
	return G, nil
}

// ReadFile parses the XYZ file with the given name.
func ReadFile(name string) (*Geometry, error) {
	errid := "xyz/ReadFile"
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	defer f.Close()
	G, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", errid, name, err)
	}
	return G, nil
}

// Write writes G to w in XYZ format.
func Write(w io.Writer, G *Geometry) error {
	errid := "xyz/Write"
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", G.Len())
	fmt.Fprintf(bw, "%s\n", G.Comment)
	bw.WriteString(G.Body())
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	return nil
}

// WriteFile writes G in XYZ format to the file with the given name,
// truncating it if it exists.
func WriteFile(name string, G *Geometry) error {
	errid := "xyz/WriteFile"
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	defer f.Close()
	if err := Write(f, G); err != nil {
		return fmt.Errorf("%s: %s: %w", errid, name, err)
	}
	return nil
}

// Body returns the symbol/coordinate lines of G without the two header
// lines, ready to be embedded in a QM input.
func (G *Geometry) Body() string {
	var b strings.Builder
	for i := 0; i < G.Len(); i++ {
		fmt.Fprintf(&b, "%-2s  %12.6f  %12.6f  %12.6f\n", G.Symbols[i],
			G.Coords.At(i, 0), G.Coords.At(i, 1), G.Coords.At(i, 2))
	}
	return b.String()
}

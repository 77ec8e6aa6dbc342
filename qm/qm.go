/*
 * qm.go, part of resp2.
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

package qm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// The charge-derivation schemes. Each one implies the theory level at
// which the ESP is computed: RESP1 uses HF/6-31G*, the two RESP2 phases
// use PW6B95/aug-cc-pV(D+d)Z, in implicit water for the liquid one.
const (
	RESP1       = "RESP1"
	RESP2Gas    = "RESP2GAS"
	RESP2Liquid = "RESP2LIQUID"
)

// ErrUnknownChargeType is returned for a charge type other than the
// RESP1/RESP2GAS/RESP2LIQUID constants.
var ErrUnknownChargeType = errors.New("charge type not recognized")

// Theory returns the QM method, basis set and implicit solvent (empty
// for vacuum) at which the ESP for the given charge type is computed.
func Theory(chargetype string) (method, basis, solvent string, err error) {
	switch chargetype {
	case RESP1:
		return "HF", "6-31G*", "", nil
	case RESP2Gas:
		return "PW6B95", "aug-cc-pV(D+d)Z", "", nil
	case RESP2Liquid:
		return "PW6B95", "aug-cc-pV(D+d)Z", "water", nil
	}
	return "", "", "", fmt.Errorf("qm/Theory: %w: %s", ErrUnknownChargeType, chargetype)
}

// Calc holds the settings of a calculation that do not depend on the
// program performing it. Note that the defaults are not part of the API
// and can change as methods come and go.
type Calc struct {
	Method  string
	Basis   string
	Memory  int //in GB
	Charge  int
	Multi   int
	Solvent string //non-empty means PCM with that solvent
}

// SetDefaults sets the calculation to a neutral singlet with the
// default memory allowance.
func (Q *Calc) SetDefaults() {
	Q.Multi = 1
	Q.Memory = 12
}

const h2Kcal = 627.509 //Hartree to kcal/mol

// hasMarker reports whether the file with the given name contains the
// string marker in any of its lines. Files ending in .gz are
// decompressed on the fly; if name itself is not there, name.gz is
// tried before giving up, as QM logs tend to get compressed after a
// run.
func hasMarker(name, marker string) (bool, error) {
	errid := "qm/hasMarker"
	f, err := os.Open(name)
	if err != nil {
		f2, err2 := os.Open(name + ".gz")
		if err2 != nil {
			return false, fmt.Errorf("%s: %w", errid, err)
		}
		f = f2
		name += ".gz"
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return false, fmt.Errorf("%s: %s: %w", errid, name, err)
		}
		defer gz.Close()
		r = gz
	}
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scan.Scan() {
		if strings.Contains(scan.Text(), marker) {
			return true, nil
		}
	}
	if err := scan.Err(); err != nil {
		return false, fmt.Errorf("%s: %s: %w", errid, name, err)
	}
	return false, nil
}

// lastLineWith returns the last line of the file that contains str,
// trying name.gz when name itself is not there, as hasMarker does.
// Plain files are scanned from the end; gzipped ones can't be seeked
// into, so they are read forward keeping the last match.
func lastLineWith(str, name string) string {
	if _, err := os.Stat(name); err == nil {
		return searchBackwards(str, name)
	}
	f, err := os.Open(name + ".gz")
	if err != nil {
		return ""
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return ""
	}
	defer gz.Close()
	var last string
	scan := bufio.NewScanner(gz)
	scan.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scan.Scan() {
		if strings.Contains(scan.Text(), str) {
			last = scan.Text()
		}
	}
	return last
}

// searchBackwards searches a file from the end for a string. Returns the
// line that contains the string, or an empty string. Energies live near
// the end of QM outputs, so this saves scanning the whole log. When a
// line doesn't match, its starting newline becomes the end of the next
// line to check, so every line gets compared exactly once.
func searchBackwards(str, filename string) string {
	var ini int64 = 0
	var end int64 = 0
	buf := make([]byte, 1)
	f, err := os.Open(filename)
	if err != nil {
		return ""
	}
	defer f.Close()
	var i int64 = 1
	for ; ; i++ {
		if _, err := f.Seek(-1*i, 2); err != nil {
			//past the start of the file, only the first line is left
			if end == 0 || i-1-end <= 0 {
				return ""
			}
			if _, err := f.Seek(0, 0); err != nil {
				return ""
			}
			bufF := make([]byte, i-1-end)
			f.Read(bufF)
			if strings.Contains(string(bufF), str) {
				return string(bufF)
			}
			return ""
		}
		if _, err := f.Read(buf); err != nil {
			return ""
		}
		if buf[0] == byte('\n') && end == 0 {
			end = i
		} else if buf[0] == byte('\n') && ini == 0 {
			ini = i
			f.Seek(-1*(ini), 2)
			bufF := make([]byte, ini-end)
			f.Read(bufF)
			if strings.Contains(string(bufF), str) {
				return string(bufF)
			}
			end = ini
			ini = 0
		}
	}
}

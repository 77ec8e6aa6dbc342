/*
 * doc.go, part of resp2.
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
 * */

//Package resp2 parameterizes molecules with RESP2 partial charges, or
//with scaled RESP1 charges. It can build a molecule from a SMILES
//string, obtain and optimize 3D conformers, fit ESP charges in gas and
//condensed phase through external programs (Omega, Psi4, respyte,
//Openbabel), and mix the fitted charge sets into a final MOL2 charge
//file with any given delta value. Every step takes explicit paths, so
//several parameterizations can run from the same process without
//sharing any state.
package resp2

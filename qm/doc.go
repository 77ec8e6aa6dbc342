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

//Package qm drives the external programs of the charge-derivation
//workflow: Omega for conformer generation, Openbabel for format
//conversion, Psi4 for geometry optimization and Respyte for the ESP
//fitting itself. Each program gets a Handle with the same shape, so the
//calculation settings stay as separated as possible from the choice of
//program that runs them.
package qm

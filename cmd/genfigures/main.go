// seehuhn.de/go/figures - illustrative figures for the linear solver notes
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command genfigures writes the illustrations for the linear solver notes
// into the directory "images", relative to the current directory.
package main

import (
	"fmt"
	"io"
	"os"

	"seehuhn.de/go/figures"
)

func main() {
	if err := run(os.Stdout, figures.DefaultConfig()); err != nil {
		panic(err)
	}
}

// run writes the figures and prints a confirmation line to w.
// Nothing is printed if generation fails.
func run(w io.Writer, cfg *figures.Config) error {
	if err := figures.Generate(cfg); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "Generated to /images")
	return err
}

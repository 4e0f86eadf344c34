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

package canvas

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image/png"
	"io"
	"math"
	"os"
)

// pngHeaderLen is the length of the PNG signature plus the IHDR chunk.
const pngHeaderLen = 8 + 4 + 4 + 13 + 4

// WritePNG encodes the canvas as PNG. A pHYs chunk records the
// resolution, so that image viewers show the page at its intended size.
func (c *Canvas) WritePNG(w io.Writer) error {
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, c.img); err != nil {
		return err
	}
	data := buf.Bytes()
	if len(data) < pngHeaderLen || string(data[12:16]) != "IHDR" {
		return errors.New("unexpected PNG encoder output")
	}

	if _, err := w.Write(data[:pngHeaderLen]); err != nil {
		return err
	}
	if _, err := w.Write(physChunk(c.dpi)); err != nil {
		return err
	}
	_, err := w.Write(data[pngHeaderLen:])
	return err
}

// SavePNG writes the canvas to the named file, replacing any existing
// file.
func (c *Canvas) SavePNG(fname string) (err error) {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return c.WritePNG(f)
}

// physChunk returns a complete pHYs chunk for the given resolution.
func physChunk(dpi float64) []byte {
	ppm := uint32(math.Round(dpi / 0.0254))

	chunk := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(chunk[0:], 9)
	copy(chunk[4:], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:], ppm)
	binary.BigEndian.PutUint32(chunk[12:], ppm)
	chunk[16] = 1 // unit: metre
	binary.BigEndian.PutUint32(chunk[17:], crc32.ChecksumIEEE(chunk[4:17]))
	return chunk
}

// PNGResolution reads the pHYs chunk of a PNG stream and returns the
// resolution in dots per inch. It reports false if there is no such
// chunk before the image data.
func PNGResolution(data []byte) (float64, bool) {
	pos := 8
	for pos+8 <= len(data) {
		n := int(binary.BigEndian.Uint32(data[pos:]))
		typ := string(data[pos+4 : pos+8])
		body := pos + 8
		if body+n+4 > len(data) {
			return 0, false
		}
		switch typ {
		case "pHYs":
			if n != 9 || data[body+8] != 1 {
				return 0, false
			}
			ppm := binary.BigEndian.Uint32(data[body:])
			return float64(ppm) * 0.0254, true
		case "IDAT", "IEND":
			return 0, false
		}
		pos = body + n + 4
	}
	return 0, false
}

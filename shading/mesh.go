// github.com/archivekit/pdfcore - a library for reading and writing PDF files
// Copyright (C) 2025  the Archivekit Authors
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

package shading

import (
	"errors"
	"io"
	"math"

	"github.com/archivekit/pdfcore/graphics/matrix"
)

// meshReader unpacks the bit-packed vertex data of mesh shadings.
type meshReader struct {
	data []byte
	pos  int // bit position

	coordBits int
	compBits  int
	flagBits  int
	decode    []float64
	nComps    int
}

func (sh *Shading) newMeshReader() (*meshReader, error) {
	nComps := sh.numInputs()
	switch sh.BitsPerCoordinate {
	case 1, 2, 4, 8, 12, 16, 24, 32:
		// pass
	default:
		return nil, errors.New("invalid BitsPerCoordinate")
	}
	switch sh.BitsPerComponent {
	case 1, 2, 4, 8, 12, 16:
		// pass
	default:
		return nil, errors.New("invalid BitsPerComponent")
	}
	if len(sh.Decode) < 4+2*nComps {
		return nil, errors.New("invalid mesh Decode array")
	}
	return &meshReader{
		data:      sh.MeshData,
		coordBits: sh.BitsPerCoordinate,
		compBits:  sh.BitsPerComponent,
		flagBits:  sh.BitsPerFlag,
		decode:    sh.Decode,
		nComps:    nComps,
	}, nil
}

func (mr *meshReader) atEOF() bool {
	return mr.pos+mr.coordBits > 8*len(mr.data)
}

func (mr *meshReader) readBits(n int) (uint32, error) {
	var res uint32
	for i := 0; i < n; i++ {
		byteIdx := mr.pos / 8
		if byteIdx >= len(mr.data) {
			return 0, io.EOF
		}
		bit := mr.data[byteIdx] >> (7 - mr.pos%8) & 1
		res = res<<1 | uint32(bit)
		mr.pos++
	}
	return res, nil
}

// readFlag reads one vertex or patch flag.  Lattice-form meshes carry
// no flags; for them flagBits is zero and the flag is always 0.
func (mr *meshReader) readFlag() (int, error) {
	if mr.flagBits == 0 {
		return 0, nil
	}
	flag, err := mr.readBits(mr.flagBits)
	return int(flag), err
}

func (mr *meshReader) readCoord() (float64, float64, error) {
	xi, err := mr.readBits(mr.coordBits)
	if err != nil {
		return 0, 0, err
	}
	yi, err := mr.readBits(mr.coordBits)
	if err != nil {
		return 0, 0, err
	}
	maxVal := float64(uint64(1)<<mr.coordBits - 1)
	x := mr.decode[0] + float64(xi)/maxVal*(mr.decode[1]-mr.decode[0])
	y := mr.decode[2] + float64(yi)/maxVal*(mr.decode[3]-mr.decode[2])
	return x, y, nil
}

func (mr *meshReader) readColor() ([]float64, error) {
	maxVal := float64(uint64(1)<<mr.compBits - 1)
	res := make([]float64, mr.nComps)
	for i := range res {
		ci, err := mr.readBits(mr.compBits)
		if err != nil {
			return nil, err
		}
		lo := mr.decode[4+2*i]
		hi := mr.decode[4+2*i+1]
		res[i] = lo + float64(ci)/maxVal*(hi-lo)
	}
	return res, nil
}

// meshVertex is a vertex of a triangle mesh, together with its color
// values (either color space components, or a single function input).
type meshVertex struct {
	x, y float64
	c    []float64
}

func (mr *meshReader) readVertex() (meshVertex, error) {
	var v meshVertex
	var err error
	v.x, v.y, err = mr.readCoord()
	if err != nil {
		return v, err
	}
	v.c, err = mr.readColor()
	return v, err
}

// paintGouraud renders free-form (type 4) and lattice-form (type 5)
// Gouraud triangle meshes.
func (sh *Shading) paintGouraud(ctm matrix.Matrix, sink Sink) error {
	mr, err := sh.newMeshReader()
	if err != nil {
		return err
	}

	emit := func(v0, v1, v2 meshVertex) error {
		return sh.fillTriangle(v0, v1, v2, 0, ctm, sink)
	}

	if sh.Type == 5 {
		// lattice form: rows of vertices without flags
		vpr := sh.VerticesPerRow
		if vpr < 2 {
			return errors.New("invalid VerticesPerRow")
		}
		mr.flagBits = 0
		var prev []meshVertex
		for !mr.atEOF() {
			row := make([]meshVertex, 0, vpr)
			for i := 0; i < vpr; i++ {
				v, err := mr.readVertex()
				if err != nil {
					return nil // truncated data ends the mesh
				}
				row = append(row, v)
			}
			if prev != nil {
				for i := 0; i+1 < vpr; i++ {
					if err := emit(prev[i], prev[i+1], row[i]); err != nil {
						return err
					}
					if err := emit(prev[i+1], row[i+1], row[i]); err != nil {
						return err
					}
				}
			}
			prev = row
		}
		return nil
	}

	// free form: each vertex carries a flag describing how it attaches
	// to the previous triangle
	var va, vb, vc meshVertex
	have := 0
	for !mr.atEOF() {
		flag, err := mr.readFlag()
		if err != nil {
			return nil
		}
		v, err := mr.readVertex()
		if err != nil {
			return nil
		}

		if flag == 0 {
			if have >= 3 {
				// a flag-0 vertex after a complete triangle starts a
				// new, unconnected triangle
				have = 0
			}
			switch have {
			case 0:
				va = v
			case 1:
				vb = v
			case 2:
				vc = v
				if err := emit(va, vb, vc); err != nil {
					return err
				}
			}
			have++
			continue
		}

		if have < 3 || flag > 2 {
			return errors.New("invalid mesh vertex flag")
		}
		if flag == 1 {
			va, vb, vc = vb, vc, v
		} else {
			vb, vc = vc, v
		}
		if err := emit(va, vb, vc); err != nil {
			return err
		}
	}
	return nil
}

// fillTriangle recursively subdivides a triangle at its edge
// midpoints.  The recursion ends when the corner colors agree, when
// all edges are shorter than half a pixel in device space, or when the
// maximum depth is reached.
func (sh *Shading) fillTriangle(v0, v1, v2 meshVertex, depth int, ctm matrix.Matrix, sink Sink) error {
	c0 := sh.color(v0.c...)
	c1 := sh.color(v1.c...)
	c2 := sh.color(v2.c...)

	flat := colorDistance(c0, c1) <= colorDelta &&
		colorDistance(c1, c2) <= colorDelta

	small := true
	for _, edge := range [][4]float64{
		{v1.x - v0.x, v1.y - v0.y},
		{v2.x - v1.x, v2.y - v1.y},
		{v0.x - v2.x, v0.y - v2.y},
	} {
		dx, dy := ctm.ApplyVec(edge[0], edge[1])
		if math.Abs(dx) >= 0.5 || math.Abs(dy) >= 0.5 {
			small = false
			break
		}
	}

	if flat || small || depth >= maxDepth {
		var xs, ys [4]float64
		for i, v := range []meshVertex{v0, v1, v2, v2} {
			xs[i], ys[i] = ctm.Apply(v.x, v.y)
		}
		return sink(xs, ys, c0)
	}

	v01 := midVertex(v0, v1)
	v12 := midVertex(v1, v2)
	v20 := midVertex(v2, v0)
	for _, sub := range [][3]meshVertex{
		{v0, v01, v20},
		{v01, v1, v12},
		{v01, v12, v20},
		{v20, v12, v2},
	} {
		err := sh.fillTriangle(sub[0], sub[1], sub[2], depth+1, ctm, sink)
		if err != nil {
			return err
		}
	}
	return nil
}

func midVertex(a, b meshVertex) meshVertex {
	c := make([]float64, len(a.c))
	for i := range c {
		c[i] = 0.5 * (a.c[i] + b.c[i])
	}
	return meshVertex{
		x: 0.5 * (a.x + b.x),
		y: 0.5 * (a.y + b.y),
		c: c,
	}
}

// patch is a bicubic patch with a 4x4 grid of control points and the
// color values at its four corners.
type patch struct {
	x, y [4][4]float64
	c    [2][2][]float64
}

// paintPatchMesh renders Coons (type 6) and tensor-product (type 7)
// patch meshes.  Patches of large meshes start at a higher subdivision
// depth, so that the per-patch work stays bounded.
func (sh *Shading) paintPatchMesh(ctm matrix.Matrix, sink Sink) error {
	mr, err := sh.newMeshReader()
	if err != nil {
		return err
	}

	var patches []patch
	var prev patch
	havePrev := false
	for !mr.atEOF() {
		flag, err := mr.readFlag()
		if err != nil {
			break
		}
		p, err := sh.readPatch(mr, flag, prev, havePrev)
		if err != nil {
			break
		}
		patches = append(patches, p)
		prev = p
		havePrev = true
		if len(patches) > 1<<16 {
			return errors.New("too many mesh patches")
		}
	}

	start := 0
	switch {
	case len(patches) > 128:
		start = 3
	case len(patches) > 64:
		start = 2
	case len(patches) > 16:
		start = 1
	}
	for i := range patches {
		err := sh.fillPatch(&patches[i], start, ctm, sink)
		if err != nil {
			return err
		}
	}
	return nil
}

// readPatch reads one patch record.  For flags 1 to 3, the first edge
// and two corner colors are taken from the previous patch.
func (sh *Shading) readPatch(mr *meshReader, flag int, prev patch, havePrev bool) (patch, error) {
	var p patch

	// The boundary control points, in the order they appear in the
	// stream: d1 edge (rows 0..3 of column 0), then bottom, right, and
	// top edge.  Positions follow figure 46 of ISO 32000-1.
	type pt = [2]int
	order := []pt{
		{0, 0}, {1, 0}, {2, 0}, {3, 0},
		{3, 1}, {3, 2}, {3, 3},
		{2, 3}, {1, 3}, {0, 3},
		{0, 2}, {0, 1},
	}

	nNew := 12
	if flag != 0 {
		if !havePrev {
			return p, errors.New("mesh patch flag without previous patch")
		}
		nNew = 8
		// the shared edge of the previous patch becomes the first edge
		// (ISO 32000-1, table 85)
		var edge [4]pt
		switch flag {
		case 1:
			edge = [4]pt{{3, 0}, {3, 1}, {3, 2}, {3, 3}}
		case 2:
			edge = [4]pt{{3, 3}, {2, 3}, {1, 3}, {0, 3}}
		case 3:
			edge = [4]pt{{0, 3}, {0, 2}, {0, 1}, {0, 0}}
		default:
			return p, errors.New("invalid mesh patch flag")
		}
		for i, dst := range order[:4] {
			src := edge[i]
			p.x[dst[0]][dst[1]] = prev.x[src[0]][src[1]]
			p.y[dst[0]][dst[1]] = prev.y[src[0]][src[1]]
		}
	}

	for _, dst := range order[12-nNew:] {
		x, y, err := mr.readCoord()
		if err != nil {
			return p, err
		}
		p.x[dst[0]][dst[1]] = x
		p.y[dst[0]][dst[1]] = y
	}

	if sh.Type == 7 {
		// tensor-product patches carry the four interior points as well
		for _, dst := range []pt{{1, 1}, {2, 1}, {2, 2}, {1, 2}} {
			x, y, err := mr.readCoord()
			if err != nil {
				return p, err
			}
			p.x[dst[0]][dst[1]] = x
			p.y[dst[0]][dst[1]] = y
		}
	} else {
		coonsInterior(&p)
	}

	// The corner colors are indexed by grid position: c[0][0] is the
	// corner at control point (0,0), c[1][0] at (3,0), c[1][1] at
	// (3,3), and c[0][1] at (0,3).  The stream stores them in boundary
	// order.
	if flag == 0 {
		for _, c := range []pt{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
			col, err := mr.readColor()
			if err != nil {
				return p, err
			}
			p.c[c[0]][c[1]] = col
		}
	} else {
		switch flag {
		case 1:
			p.c[0][0] = prev.c[1][0]
			p.c[1][0] = prev.c[1][1]
		case 2:
			p.c[0][0] = prev.c[1][1]
			p.c[1][0] = prev.c[0][1]
		case 3:
			p.c[0][0] = prev.c[0][1]
			p.c[1][0] = prev.c[0][0]
		}
		for _, c := range []pt{{1, 1}, {0, 1}} {
			col, err := mr.readColor()
			if err != nil {
				return p, err
			}
			p.c[c[0]][c[1]] = col
		}
	}
	return p, nil
}

// coonsInterior fills in the four interior control points of a Coons
// patch from its boundary, per the formulas in ISO 32000-1 §8.7.4.5.7.
func coonsInterior(p *patch) {
	for _, idx := range [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}} {
		i, j := idx[0], idx[1]
		ni, fi := nearFar(i)
		nj, fj := nearFar(j)
		p.x[i][j] = (-4*p.x[ni][nj] +
			6*(p.x[ni][j]+p.x[i][nj]) -
			2*(p.x[ni][fj]+p.x[fi][nj]) +
			3*(p.x[fi][j]+p.x[i][fj]) -
			p.x[fi][fj]) / 9
		p.y[i][j] = (-4*p.y[ni][nj] +
			6*(p.y[ni][j]+p.y[i][nj]) -
			2*(p.y[ni][fj]+p.y[fi][nj]) +
			3*(p.y[fi][j]+p.y[i][fj]) -
			p.y[fi][fj]) / 9
	}
}

// nearFar maps an interior index (1 or 2) to the nearest and farthest
// boundary row or column.
func nearFar(i int) (int, int) {
	if i == 1 {
		return 0, 3
	}
	return 3, 0
}

// fillPatch recursively splits a patch four ways using de Casteljau's
// construction, first along the rows and then along the columns, as
// long as the corner colors differ and the depth limit has not been
// reached.  Terminal patches are painted in the color of their first
// corner, approximated by their four corner points.
func (sh *Shading) fillPatch(p *patch, depth int, ctm matrix.Matrix, sink Sink) error {
	c00 := sh.color(p.c[0][0]...)
	c01 := sh.color(p.c[0][1]...)
	c10 := sh.color(p.c[1][0]...)
	c11 := sh.color(p.c[1][1]...)

	flat := colorDistance(c00, c01) <= colorDelta &&
		colorDistance(c01, c11) <= colorDelta &&
		colorDistance(c11, c10) <= colorDelta &&
		colorDistance(c10, c00) <= colorDelta

	if flat || depth >= maxDepth {
		var xs, ys [4]float64
		for i, idx := range [][2]int{{0, 0}, {3, 0}, {3, 3}, {0, 3}} {
			xs[i], ys[i] = ctm.Apply(p.x[idx[0]][idx[1]], p.y[idx[0]][idx[1]])
		}
		return sink(xs, ys, c00)
	}

	// split each row of control points into two halves
	var xx, yy [4][8]float64
	for i := 0; i < 4; i++ {
		xx[i][0] = p.x[i][0]
		yy[i][0] = p.y[i][0]
		xx[i][1] = 0.5 * (p.x[i][0] + p.x[i][1])
		yy[i][1] = 0.5 * (p.y[i][0] + p.y[i][1])
		xm := 0.5 * (p.x[i][1] + p.x[i][2])
		ym := 0.5 * (p.y[i][1] + p.y[i][2])
		xx[i][6] = 0.5 * (p.x[i][2] + p.x[i][3])
		yy[i][6] = 0.5 * (p.y[i][2] + p.y[i][3])
		xx[i][2] = 0.5 * (xx[i][1] + xm)
		yy[i][2] = 0.5 * (yy[i][1] + ym)
		xx[i][5] = 0.5 * (xm + xx[i][6])
		yy[i][5] = 0.5 * (ym + yy[i][6])
		xx[i][3] = 0.5 * (xx[i][2] + xx[i][5])
		yy[i][3] = 0.5 * (yy[i][2] + yy[i][5])
		xx[i][4] = xx[i][3]
		yy[i][4] = yy[i][3]
		xx[i][7] = p.x[i][3]
		yy[i][7] = p.y[i][3]
	}

	// then split each column of the two halves
	var sub [2][2]patch
	for half := 0; half < 2; half++ {
		for j := 0; j < 4; j++ {
			col := half*4 + j
			x0 := xx[0][col]
			x1 := 0.5 * (xx[0][col] + xx[1][col])
			xm := 0.5 * (xx[1][col] + xx[2][col])
			x6 := 0.5 * (xx[2][col] + xx[3][col])
			x2 := 0.5 * (x1 + xm)
			x5 := 0.5 * (xm + x6)
			x3 := 0.5 * (x2 + x5)

			y0 := yy[0][col]
			y1 := 0.5 * (yy[0][col] + yy[1][col])
			ym := 0.5 * (yy[1][col] + yy[2][col])
			y6 := 0.5 * (yy[2][col] + yy[3][col])
			y2 := 0.5 * (y1 + ym)
			y5 := 0.5 * (ym + y6)
			y3 := 0.5 * (y2 + y5)

			for k, v := range [4]float64{x0, x1, x2, x3} {
				sub[0][half].x[k][j] = v
			}
			for k, v := range [4]float64{y0, y1, y2, y3} {
				sub[0][half].y[k][j] = v
			}
			for k, v := range [4]float64{x3, x5, x6, xx[3][col]} {
				sub[1][half].x[k][j] = v
			}
			for k, v := range [4]float64{y3, y5, y6, yy[3][col]} {
				sub[1][half].y[k][j] = v
			}
		}
	}

	cm0 := midColor(p.c[0][0], p.c[0][1])
	cm1 := midColor(p.c[1][0], p.c[1][1])
	c0m := midColor(p.c[0][0], p.c[1][0])
	c1m := midColor(p.c[0][1], p.c[1][1])
	cmm := midColor(cm0, cm1)

	sub[0][0].c = [2][2][]float64{{p.c[0][0], cm0}, {c0m, cmm}}
	sub[0][1].c = [2][2][]float64{{cm0, p.c[0][1]}, {cmm, c1m}}
	sub[1][0].c = [2][2][]float64{{c0m, cmm}, {p.c[1][0], cm1}}
	sub[1][1].c = [2][2][]float64{{cmm, c1m}, {cm1, p.c[1][1]}}

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			err := sh.fillPatch(&sub[i][j], depth+1, ctm, sink)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func midColor(a, b []float64) []float64 {
	c := make([]float64, len(a))
	for i := range c {
		c[i] = 0.5 * (a[i] + b[i])
	}
	return c
}

// Package meshcheck inspects triangle meshes for defects that ruin 3D
// prints. It welds vertices on an integer lattice and accounts edge usage to
// decide whether a mesh bounds a solid, i.e. whether it is a closed
// orientable 2-manifold.
package meshcheck

import (
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

// Report summarizes the topology of an inspected triangle mesh.
type Report struct {
	// Triangles is the total input triangle count.
	Triangles int
	// NonFiniteTriangles counts triangles with a NaN or infinite
	// coordinate in float32 space, the precision STL files store. They
	// are excluded from welding and edge accounting.
	NonFiniteTriangles int
	// DegenerateTriangles counts triangles with two or more vertices
	// coincident within VertexTol. Their edges are not accounted.
	DegenerateTriangles int
	// Vertices is the welded vertex count.
	Vertices int
	// Edges is the welded undirected edge count.
	Edges int
	// BoundaryEdges counts edges used by exactly one triangle. A closed
	// surface has none.
	BoundaryEdges int
	// OverusedEdges counts edges used by three or more triangles.
	OverusedEdges int
	// MisorientedEdges counts edges whose two uses run in the same
	// direction, which means the neighboring triangles wind in opposite
	// senses.
	MisorientedEdges int
	// VertexTol is the welding tolerance applied, either the one passed
	// to Inspect or the inferred one.
	VertexTol float64
	// Bounds is the bounding box of the finite vertices.
	Bounds r3.Box
}

// Manifold reports whether the mesh bounds a printable solid: every edge
// shared by exactly two consistently wound triangles and no degenerate or
// non-finite triangles.
func (r Report) Manifold() bool {
	return r.Triangles > 0 && r.NonFiniteTriangles == 0 && r.DegenerateTriangles == 0 &&
		r.BoundaryEdges == 0 && r.OverusedEdges == 0 && r.MisorientedEdges == 0
}

// Inspect welds the vertices of model and returns the edge usage accounting
// of the welded mesh. vertexTolOrZero is the welding tolerance and should be
// well under the smallest triangle side. If set to 0 it is inferred
// automatically.
func Inspect(model []r3.Triangle, vertexTolOrZero float64) (Report, error) {
	if len(model) == 0 {
		return Report{}, errors.New("empty triangle mesh")
	}
	tol := vertexTolOrZero
	bb := r3.Box{Min: elem(math.MaxFloat64), Max: elem(-math.MaxFloat64)}
	minDist2 := math.MaxFloat64
	maxDist2 := -math.MaxFloat64
	finite := 0
	for i := range model {
		if badTriangle(model[i]) {
			continue
		}
		finite++
		for j, vert := range model[i] {
			bb.Min = minElem(bb.Min, vert)
			bb.Max = maxElem(bb.Max, vert)
			side2 := r3.Norm2(r3.Sub(model[i][(j+1)%3], vert))
			if side2 > 0 {
				minDist2 = math.Min(minDist2, side2)
			}
			maxDist2 = math.Max(maxDist2, side2)
		}
	}
	if finite == 0 {
		return Report{}, errors.New("mesh has no finite triangles")
	}
	if minDist2 == math.MaxFloat64 {
		return Report{}, errors.New("all triangle sides are zero length")
	}
	suggested := math.Sqrt(minDist2) / 256
	if tol > math.Sqrt(maxDist2)/2 {
		return Report{}, fmt.Errorf("vertex tolerance %g too large for triangle sides, suggested: %g", tol, suggested)
	}
	if tol == 0 {
		tol = suggested
	}
	size := r3.Sub(bb.Max, bb.Min)
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	div := int64(maxDim/tol + 1e-12)
	if div <= 0 {
		return Report{}, errors.New("tolerance larger than model size")
	}
	if div > math.MaxInt64/2 {
		return Report{}, errors.New("tolerance too small. overflowed int64")
	}

	report := Report{
		Triangles:          len(model),
		NonFiniteTriangles: len(model) - finite,
		VertexTol:          tol,
		Bounds:             bb,
	}
	// Vertex index cache on the welding lattice.
	cache := make(map[[3]int64]int)
	ri := 1 / tol
	type edgeUse struct {
		uses int
		// net accumulates traversal direction. Two consistently wound
		// neighbors traverse their shared edge in opposite directions
		// and cancel out.
		net int
	}
	edges := make(map[[2]int]edgeUse)
	var idx [3]int
	for _, tri := range model {
		if badTriangle(tri) {
			continue
		}
		for j, vert := range tri {
			v := r3.Scale(ri, vert)
			vi := [3]int64{int64(v.X), int64(v.Y), int64(v.Z)}
			vertexIdx, ok := cache[vi]
			if !ok {
				vertexIdx = len(cache)
				cache[vi] = vertexIdx
			}
			idx[j] = vertexIdx
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[2] == idx[0] {
			report.DegenerateTriangles++
			continue
		}
		for j := range idx {
			a, b := idx[j], idx[(j+1)%3]
			edge := [2]int{a, b}
			dir := 1
			if a > b {
				edge[0], edge[1] = b, a
				dir = -1
			}
			e := edges[edge]
			e.uses++
			e.net += dir
			edges[edge] = e
		}
	}
	report.Vertices = len(cache)
	report.Edges = len(edges)
	for _, e := range edges {
		switch {
		case e.uses == 1:
			report.BoundaryEdges++
		case e.uses > 2:
			report.OverusedEdges++
		case e.net != 0:
			report.MisorientedEdges++
		}
	}
	return report, nil
}

// badTriangle reports whether tri has a NaN or infinite coordinate once
// truncated to float32, the precision the mesh survives in an STL file.
func badTriangle(tri r3.Triangle) bool {
	for _, vert := range tri {
		if bad32(vert.X) || bad32(vert.Y) || bad32(vert.Z) {
			return true
		}
	}
	return false
}

func bad32(v float64) bool {
	f := float32(v)
	return math32.IsNaN(f) || math32.IsInf(f, 0)
}

func elem(v float64) r3.Vec { return r3.Vec{X: v, Y: v, Z: v} }

func minElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

func maxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

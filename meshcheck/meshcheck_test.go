package meshcheck_test

import (
	"math"
	"strings"
	"testing"

	"pc104-standoff/meshcheck"

	"github.com/soypat/sdf/form3/must3"
	"github.com/soypat/sdf/render"
	"gonum.org/v1/gonum/spatial/r3"
)

func vec(x, y, z float64) r3.Vec { return r3.Vec{X: x, Y: y, Z: z} }

// unitCube returns a coherently wound closed mesh of the unit cube: 12
// triangles over 8 vertices and 18 edges, all normals outward.
func unitCube() []r3.Triangle {
	return []r3.Triangle{
		// z=0, normal -Z.
		{vec(0, 0, 0), vec(1, 1, 0), vec(1, 0, 0)},
		{vec(0, 0, 0), vec(0, 1, 0), vec(1, 1, 0)},
		// z=1, normal +Z.
		{vec(0, 0, 1), vec(1, 0, 1), vec(1, 1, 1)},
		{vec(0, 0, 1), vec(1, 1, 1), vec(0, 1, 1)},
		// y=0, normal -Y.
		{vec(0, 0, 0), vec(1, 0, 0), vec(1, 0, 1)},
		{vec(0, 0, 0), vec(1, 0, 1), vec(0, 0, 1)},
		// y=1, normal +Y.
		{vec(0, 1, 0), vec(1, 1, 1), vec(1, 1, 0)},
		{vec(0, 1, 0), vec(0, 1, 1), vec(1, 1, 1)},
		// x=0, normal -X.
		{vec(0, 0, 0), vec(0, 0, 1), vec(0, 1, 1)},
		{vec(0, 0, 0), vec(0, 1, 1), vec(0, 1, 0)},
		// x=1, normal +X.
		{vec(1, 0, 0), vec(1, 1, 1), vec(1, 0, 1)},
		{vec(1, 0, 0), vec(1, 1, 0), vec(1, 1, 1)},
	}
}

func TestInspectClosedCube(t *testing.T) {
	report, err := meshcheck.Inspect(unitCube(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Manifold() {
		t.Errorf("closed cube not manifold: %+v", report)
	}
	if report.Triangles != 12 {
		t.Errorf("triangles got %d, want 12", report.Triangles)
	}
	if report.Vertices != 8 {
		t.Errorf("welded vertices got %d, want 8", report.Vertices)
	}
	if report.Edges != 18 {
		t.Errorf("welded edges got %d, want 18", report.Edges)
	}
	if report.Bounds.Min != vec(0, 0, 0) || report.Bounds.Max != vec(1, 1, 1) {
		t.Errorf("bounds got %+v", report.Bounds)
	}
	if report.VertexTol <= 0 {
		t.Errorf("inferred tolerance not positive: %g", report.VertexTol)
	}
}

func TestInspectBoundaryEdges(t *testing.T) {
	// Drop one face triangle to open the surface.
	report, err := meshcheck.Inspect(unitCube()[:11], 0)
	if err != nil {
		t.Fatal(err)
	}
	if report.Manifold() {
		t.Error("open mesh reported manifold")
	}
	if report.BoundaryEdges != 3 {
		t.Errorf("boundary edges got %d, want 3", report.BoundaryEdges)
	}
	if report.OverusedEdges != 0 || report.MisorientedEdges != 0 {
		t.Errorf("unexpected edge defects: %+v", report)
	}
}

func TestInspectOverusedEdges(t *testing.T) {
	model := unitCube()
	model = append(model, model[0])
	report, err := meshcheck.Inspect(model, 0)
	if err != nil {
		t.Fatal(err)
	}
	if report.Manifold() {
		t.Error("mesh with duplicated triangle reported manifold")
	}
	if report.OverusedEdges != 3 {
		t.Errorf("overused edges got %d, want 3", report.OverusedEdges)
	}
}

func TestInspectMisorientedEdges(t *testing.T) {
	model := unitCube()
	// Flip the winding of one triangle.
	last := &model[len(model)-1]
	last[0], last[1] = last[1], last[0]
	report, err := meshcheck.Inspect(model, 0)
	if err != nil {
		t.Fatal(err)
	}
	if report.Manifold() {
		t.Error("mesh with flipped triangle reported manifold")
	}
	if report.MisorientedEdges != 3 {
		t.Errorf("misoriented edges got %d, want 3", report.MisorientedEdges)
	}
	if report.BoundaryEdges != 0 || report.OverusedEdges != 0 {
		t.Errorf("unexpected edge defects: %+v", report)
	}
}

func TestInspectDegenerateTriangle(t *testing.T) {
	model := unitCube()
	model = append(model, r3.Triangle{vec(2, 2, 2), vec(2, 2, 2), vec(3, 3, 3)})
	report, err := meshcheck.Inspect(model, 0)
	if err != nil {
		t.Fatal(err)
	}
	if report.Manifold() {
		t.Error("mesh with degenerate triangle reported manifold")
	}
	if report.DegenerateTriangles != 1 {
		t.Errorf("degenerate triangles got %d, want 1", report.DegenerateTriangles)
	}
}

func TestInspectNonFiniteTriangles(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), 1e39} {
		model := unitCube()
		model = append(model, r3.Triangle{vec(bad, 0, 0), vec(1, 0, 0), vec(0, 1, 0)})
		report, err := meshcheck.Inspect(model, 0)
		if err != nil {
			t.Fatal(err)
		}
		if report.Manifold() {
			t.Errorf("mesh with %g coordinate reported manifold", bad)
		}
		if report.NonFiniteTriangles != 1 {
			t.Errorf("non-finite triangles got %d, want 1 for coordinate %g", report.NonFiniteTriangles, bad)
		}
		// The defective triangle must not disturb the cube accounting.
		if report.Vertices != 8 || report.Edges != 18 {
			t.Errorf("weld accounting disturbed: %+v", report)
		}
	}
}

func TestInspectErrors(t *testing.T) {
	if _, err := meshcheck.Inspect(nil, 0); err == nil {
		t.Error("expected error for empty mesh")
	}
	_, err := meshcheck.Inspect(unitCube(), 10)
	if err == nil || !strings.Contains(err.Error(), "tolerance") {
		t.Errorf("expected tolerance error, got %v", err)
	}
	zero := []r3.Triangle{{vec(1, 1, 1), vec(1, 1, 1), vec(1, 1, 1)}}
	if _, err := meshcheck.Inspect(zero, 0); err == nil {
		t.Error("expected error for zero length sides")
	}
}

func TestInspectRenderedCylinder(t *testing.T) {
	const quality = 64
	s := must3.Cylinder(10, 3, 0)
	model, err := render.RenderAll(render.NewOctreeRenderer(s, quality))
	if err != nil {
		t.Fatal(err)
	}
	report, err := meshcheck.Inspect(model, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Manifold() {
		t.Errorf("rendered cylinder not manifold: %+v", report)
	}
	if report.Triangles < 100 {
		t.Errorf("suspiciously few triangles: %d", report.Triangles)
	}
}

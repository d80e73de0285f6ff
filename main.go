// Command pc104-standoff generates a 3D printable standoff plate for PC/104
// board stacks and writes it to build/ in STL, STEP, 3MF and PNG form. Two
// parts come out: the drawing-true part and a PLA print variant with the
// screw holes compensated for material shrinkage.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pc104-standoff/meshcheck"
	"pc104-standoff/pc104"
	"pc104-standoff/preview"
	"pc104-standoff/step"

	"github.com/soypat/sdf/helpers/matter"
	"github.com/soypat/sdf/render"
)

const (
	buildDir  = "build"
	meshCells = 300
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
	if err := run(); err != nil {
		slog.Error("build failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	spec := pc104.DefaultSpec()
	dims := pc104.DefaultStandSpec()
	// PLA shrinks onto internal dimensions when cooling, so the print
	// variant gets slightly larger screw holes.
	pla := dims
	pla.HoleDiameter = matter.PLA.InternalDimScale(dims.HoleDiameter)

	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	parts := []struct {
		name string
		dims pc104.StandSpec
	}{
		{name: "pc104_standoff", dims: dims},
		{name: "pc104_standoff_pla", dims: pla},
	}
	for _, part := range parts {
		if err := export(part.name, spec, part.dims); err != nil {
			return fmt.Errorf("%s: %w", part.name, err)
		}
	}
	return nil
}

// export renders the standoff with the given dimensions and writes its STL,
// STEP, 3MF and PNG renditions under the build directory.
func export(name string, spec pc104.Spec, dims pc104.StandSpec) error {
	s, err := pc104.Standoff(spec, dims)
	if err != nil {
		return err
	}
	model, err := render.RenderAll(render.NewOctreeRenderer(s, meshCells))
	if err != nil {
		return err
	}
	report, err := meshcheck.Inspect(model, 0)
	if err != nil {
		return err
	}
	if !report.Manifold() {
		slog.Warn("part is not manifold",
			"part", name,
			"boundaryEdges", report.BoundaryEdges,
			"overusedEdges", report.OverusedEdges,
			"misorientedEdges", report.MisorientedEdges,
			"degenerateTriangles", report.DegenerateTriangles)
	}
	stlPath := filepath.Join(buildDir, name+".stl")
	fp, err := os.Create(stlPath)
	if err != nil {
		return err
	}
	if err := render.WriteSTL(fp, model); err != nil {
		fp.Close()
		return err
	}
	if err := fp.Close(); err != nil {
		return err
	}
	if err := step.Create(filepath.Join(buildDir, name+".step"), name, model); err != nil {
		return err
	}
	// RenderAll consumed the first renderer, the 3MF writer gets a fresh
	// one.
	if err := render.Create3MF(filepath.Join(buildDir, name+".3mf"), render.NewOctreeRenderer(s, meshCells)); err != nil {
		return err
	}
	if err := preview.PNG(stlPath, filepath.Join(buildDir, name+".png"), preview.IsoView(2.4)); err != nil {
		return err
	}
	slog.Info("wrote part",
		"part", name,
		"triangles", report.Triangles,
		"vertices", report.Vertices,
		"manifold", report.Manifold())
	return nil
}

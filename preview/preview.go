// Package preview renders STL files to PNG images for quick visual checks of
// generated parts without opening a slicer.
package preview

import (
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// Scale down images relative to Full HD resolution.
	FHDscaler     = 0.4
	width, height = int(1920. * FHDscaler), int(1080. * FHDscaler)
	// Supersampling factor. The render is downsampled to width x height
	// for antialiasing.
	scale = 2
	// Vertical field of view in degrees.
	fovy = 30
)

// Config is the camera placement of a preview render. The rendered mesh is
// fit to a bi-unit cube centered at the origin, so eye positions a few units
// out frame any part regardless of its real size.
type Config struct {
	// LookAt is the point the camera looks at.
	LookAt r3.Vec
	// Up is the camera up direction.
	Up r3.Vec
	// EyePos is the camera position.
	EyePos r3.Vec
	// Near and Far are the clipping plane distances.
	Near, Far float64
}

// IsoView returns a camera looking at the origin from an isometric vantage
// dist units out along each axis with Z up.
func IsoView(dist float64) Config {
	return Config{
		Up:     r3.Vec{Z: 1},
		EyePos: r3.Vec{X: dist, Y: dist, Z: dist},
		Near:   1,
		Far:    10,
	}
}

// PNG renders the STL file at stlPath to a PNG image at pngPath as seen from
// view.
func PNG(stlPath, pngPath string, view Config) error {
	mesh, err := fauxgl.LoadSTL(stlPath)
	if err != nil {
		return err
	}
	var (
		eye    = fauxgl.V(view.EyePos.X, view.EyePos.Y, view.EyePos.Z)
		center = fauxgl.V(view.LookAt.X, view.LookAt.Y, view.LookAt.Z)
		up     = fauxgl.V(view.Up.X, view.Up.Y, view.Up.Z)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)
	// Fit mesh in a bi-unit cube centered at the origin.
	mesh.BiUnitCube()
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	// Downsample for antialiasing.
	image := context.Image()
	image = resize.Resize(uint(width), uint(height), image, resize.Bilinear)
	return fauxgl.SavePNG(pngPath, image)
}

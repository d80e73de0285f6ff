// Package pc104 generates a 3D printable standoff plate for PC/104 form
// factor boards. The plate replicates the board outline and mounting holes of
// the PC/104 mechanical drawing so that a board stack can be assembled on the
// plate with the stack-through header clearing it. All dimensions are in
// millimetres and follow the drawing's convention: the top-left stack header
// pin is the coordinate origin, X grows east and Y grows north.
package pc104

import (
	"github.com/soypat/sdf"
	"github.com/soypat/sdf/form2/must2"
	"github.com/soypat/sdf/form3/must3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Spec holds the PC/104 form factor dimensions relevant to the standoff
// plate. The zero value is not useful, start from DefaultSpec.
type Spec struct {
	// TopLeftPin is the position of pin H2-52, the top-left pin of the
	// stack header grid and the origin of the drawing.
	TopLeftPin r2.Vec
	// PinCountX and PinCountY are the stack header grid dimensions.
	PinCountX int
	PinCountY int
	// PinPitch is the stack header pin spacing.
	PinPitch float64
	// OutlineSize is the size of the board outline.
	OutlineSize r2.Vec
	// OutlineTopLeft is the top-left (northwest) corner of the board
	// outline relative to TopLeftPin.
	OutlineTopLeft r2.Vec
}

// DefaultSpec returns the PC/104 dimensions of the mechanical drawing for a
// board with a 4x26 stack header on the west edge.
func DefaultSpec() Spec {
	return Spec{
		TopLeftPin:     r2.Vec{},
		PinCountX:      4,
		PinCountY:      26,
		PinPitch:       2.54,
		OutlineSize:    r2.Vec{X: 94.54, Y: 88.1},
		OutlineTopLeft: r2.Vec{X: -4.4, Y: 11.63},
	}
}

// MountHole is one of the four corner mounting holes of the PC/104 outline.
type MountHole struct {
	// Corner names the hole by compass direction: NW, NE, SW or SE.
	Corner string
	// Pos is the hole center on the board plane.
	Pos r2.Vec
}

// MountHoles returns the four mounting holes in the fixed order NW, NE, SW,
// SE. The coordinates are the drawing's and are deliberately not symmetric:
// the east holes sit lower than their west counterparts.
func (s Spec) MountHoles() [4]MountHole {
	return [4]MountHole{
		{Corner: "NW", Pos: r2.Vec{X: 0, Y: 5.08}},
		{Corner: "NE", Pos: r2.Vec{X: 85.73, Y: 7.62}},
		{Corner: "SW", Pos: r2.Vec{X: 0, Y: -68.58}},
		{Corner: "SE", Pos: r2.Vec{X: 85.73, Y: -72.39}},
	}
}

// StackHeaderCenter returns the center of the stack header pin grid.
func (s Spec) StackHeaderCenter() r2.Vec {
	return r2.Vec{
		X: s.TopLeftPin.X + float64(s.PinCountX-1)*s.PinPitch/2,
		Y: s.TopLeftPin.Y - float64(s.PinCountY-1)*s.PinPitch/2,
	}
}

// StandSpec holds the standoff plate dimensions. The zero value is not
// useful, start from DefaultStandSpec.
type StandSpec struct {
	// PlateThickness is the base plate thickness.
	PlateThickness float64
	// CornerRadius rounds the vertical edges of the base plate.
	CornerRadius float64
	// PillarHeight is the total standoff height measured from the plate
	// underside, so it includes PlateThickness.
	PillarHeight float64
	// HoleDiameter is the screw hole diameter drilled down each pillar.
	HoleDiameter float64
	// PillarDiameterEast and PillarDiameterWest are the pillar outer
	// diameters. The west pillars are slimmer to clear the stack header.
	PillarDiameterEast float64
	PillarDiameterWest float64
}

// DefaultStandSpec returns standoff dimensions for an M3 screw mount
// printable without supports.
func DefaultStandSpec() StandSpec {
	return StandSpec{
		PlateThickness:     2.0,
		CornerRadius:       3.0,
		PillarHeight:       9.5,
		HoleDiameter:       3.5,
		PillarDiameterEast: 6.5,
		PillarDiameterWest: 5.8,
	}
}

const (
	// Drill length and below-plate overshoot. Oversized so cutters always
	// pierce the faces they must open.
	drillLength = 20.
	drillDrop   = 10.
	// Clearance margins of the stack header slot around the pin grid.
	slotMarginX = 8.
	slotMarginY = 3.
)

// Standoff returns the standoff plate solid for a board described by spec
// with the standoff dimensions of dims.
//
// The solid is built in a fixed order: plate first, then per mounting hole a
// pillar union followed by the screw hole subtraction, then the stack header
// slot subtraction. Drills at NE, SW and SE start at the plate top face and
// leave the plate underside closed, while the NW drill starts below the
// plate and opens a through hole. The header slot is cut last and shaves the
// slot-facing walls of the NW and SW pillars.
func Standoff(spec Spec, dims StandSpec) (s sdf.SDF3, err error) {
	// Base plate with rounded vertical edges, top face at z=PlateThickness.
	plate := sdf.Extrude3D(must2.Box(spec.OutlineSize, dims.CornerRadius), dims.PlateThickness)
	s = sdf.Transform3D(plate, sdf.Translate3D(r3.Vec{
		X: spec.OutlineTopLeft.X + spec.OutlineSize.X/2,
		Y: spec.OutlineTopLeft.Y - spec.OutlineSize.Y/2,
		Z: dims.PlateThickness / 2,
	}))
	for _, hole := range spec.MountHoles() {
		od := dims.PillarDiameterWest
		if hole.Corner == "NE" || hole.Corner == "SE" {
			od = dims.PillarDiameterEast
		}
		var pillar sdf.SDF3 = must3.Cylinder(dims.PillarHeight, od/2, 0)
		pillar = sdf.Transform3D(pillar, sdf.Translate3D(r3.Vec{
			X: hole.Pos.X, Y: hole.Pos.Y, Z: dims.PillarHeight / 2,
		}))
		s = sdf.Union3D(s, pillar)

		drillStart := dims.PlateThickness
		if hole.Corner == "NW" {
			drillStart = -drillDrop
		}
		var drill sdf.SDF3 = must3.Cylinder(drillLength, dims.HoleDiameter/2, 0)
		drill = sdf.Transform3D(drill, sdf.Translate3D(r3.Vec{
			X: hole.Pos.X, Y: hole.Pos.Y, Z: drillStart + drillLength/2,
		}))
		s = sdf.Difference3D(s, drill)
	}
	var slot sdf.SDF3 = must3.Box(r3.Vec{
		X: float64(spec.PinCountX)*spec.PinPitch + slotMarginX,
		Y: float64(spec.PinCountY)*spec.PinPitch + slotMarginY,
		Z: drillLength,
	}, 0)
	center := spec.StackHeaderCenter()
	slot = sdf.Transform3D(slot, sdf.Translate3D(r3.Vec{
		X: center.X, Y: center.Y, Z: drillLength / 2,
	}))
	s = sdf.Difference3D(s, slot)
	return s, err
}

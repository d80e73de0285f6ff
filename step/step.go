// Package step writes triangle meshes as ISO 10303-21 exchange files using
// the AP214 automotive_design schema. The mesh is encoded as a FACETED_BREP
// over a CLOSED_SHELL of poly loop faces so CAD packages import the part as
// a solid rather than as a bare tessellation. Coordinates are written in
// millimetres.
//
// Output is deterministic: entity identifiers depend only on the model and
// the header carries no timestamp, so writing the same mesh twice produces
// identical bytes.
package step

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Fixed entity identifiers of the AP214 product skeleton. Geometry entities
// are numbered after these.
const (
	idAppContext = iota + 1
	idAppProtocol
	idProductContext
	idProduct
	idProductFormation
	idProductDefContext
	idProductDef
	idProductShape
	idGeomContext
	idLengthUnit
	idAngleUnit
	idSolidAngleUnit
	idUncertainty
	idShapeRepr
	idBrepRepr
	idPlacement
	idOrigin
	idAxisZ
	idAxisX
	idBrep
	idShell
	idFirstVertex
)

// Create writes model to a new file at path. See Write.
func Create(path, name string, model []r3.Triangle) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(fp, name, model); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

// Write writes model to w as an AP214 faceted boundary representation solid
// named name. Exactly coincident triangle corners share one CARTESIAN_POINT
// entity. The model must be non-empty with finite coordinates.
func Write(w io.Writer, name string, model []r3.Triangle) error {
	if len(model) == 0 {
		return errors.New("empty triangle mesh")
	}
	// Weld exactly shared corners into a vertex table ordered by first use.
	index := make(map[r3.Vec]int)
	var points []r3.Vec
	for i, tri := range model {
		for _, vert := range tri {
			if bad(vert) {
				return fmt.Errorf("non-finite vertex in triangle %d", i)
			}
			if _, ok := index[vert]; !ok {
				index[vert] = len(points)
				points = append(points, vert)
			}
		}
	}

	bw := bufio.NewWriter(w)
	sname := escape(name)
	fmt.Fprintf(bw, "ISO-10303-21;\nHEADER;\nFILE_DESCRIPTION(('%s'),'2;1');\n", sname)
	// The timestamp field stays empty so identical models yield identical
	// files.
	fmt.Fprintf(bw, "FILE_NAME('%s','',(''),(''),'','','');\n", sname)
	fmt.Fprintf(bw, "FILE_SCHEMA(('AUTOMOTIVE_DESIGN { 1 0 10303 214 1 1 1 1 }'));\nENDSEC;\nDATA;\n")

	fmt.Fprintf(bw, "#%d=APPLICATION_CONTEXT('core data for automotive mechanical design processes');\n", idAppContext)
	fmt.Fprintf(bw, "#%d=APPLICATION_PROTOCOL_DEFINITION('international standard','automotive_design',2010,#%d);\n", idAppProtocol, idAppContext)
	fmt.Fprintf(bw, "#%d=PRODUCT_CONTEXT('',#%d,'mechanical');\n", idProductContext, idAppContext)
	fmt.Fprintf(bw, "#%d=PRODUCT('%s','%s','',(#%d));\n", idProduct, sname, sname, idProductContext)
	fmt.Fprintf(bw, "#%d=PRODUCT_DEFINITION_FORMATION('','',#%d);\n", idProductFormation, idProduct)
	fmt.Fprintf(bw, "#%d=PRODUCT_DEFINITION_CONTEXT('part definition',#%d,'design');\n", idProductDefContext, idAppContext)
	fmt.Fprintf(bw, "#%d=PRODUCT_DEFINITION('design','',#%d,#%d);\n", idProductDef, idProductFormation, idProductDefContext)
	fmt.Fprintf(bw, "#%d=PRODUCT_DEFINITION_SHAPE('','',#%d);\n", idProductShape, idProductDef)
	fmt.Fprintf(bw, "#%d=(GEOMETRIC_REPRESENTATION_CONTEXT(3)GLOBAL_UNCERTAINTY_ASSIGNED_CONTEXT((#%d))GLOBAL_UNIT_ASSIGNED_CONTEXT((#%d,#%d,#%d))REPRESENTATION_CONTEXT('','3D'));\n",
		idGeomContext, idUncertainty, idLengthUnit, idAngleUnit, idSolidAngleUnit)
	fmt.Fprintf(bw, "#%d=(LENGTH_UNIT()NAMED_UNIT(*)SI_UNIT(.MILLI.,.METRE.));\n", idLengthUnit)
	fmt.Fprintf(bw, "#%d=(NAMED_UNIT(*)PLANE_ANGLE_UNIT()SI_UNIT($,.RADIAN.));\n", idAngleUnit)
	fmt.Fprintf(bw, "#%d=(NAMED_UNIT(*)SI_UNIT($,.STERADIAN.)SOLID_ANGLE_UNIT());\n", idSolidAngleUnit)
	fmt.Fprintf(bw, "#%d=UNCERTAINTY_MEASURE_WITH_UNIT(LENGTH_MEASURE(1.E-6),#%d,'distance_accuracy_value','');\n", idUncertainty, idLengthUnit)
	fmt.Fprintf(bw, "#%d=SHAPE_DEFINITION_REPRESENTATION(#%d,#%d);\n", idShapeRepr, idProductShape, idBrepRepr)
	fmt.Fprintf(bw, "#%d=FACETED_BREP_SHAPE_REPRESENTATION('%s',(#%d,#%d),#%d);\n", idBrepRepr, sname, idPlacement, idBrep, idGeomContext)
	fmt.Fprintf(bw, "#%d=AXIS2_PLACEMENT_3D('',#%d,#%d,#%d);\n", idPlacement, idOrigin, idAxisZ, idAxisX)
	fmt.Fprintf(bw, "#%d=CARTESIAN_POINT('',(0.,0.,0.));\n", idOrigin)
	fmt.Fprintf(bw, "#%d=DIRECTION('',(0.,0.,1.));\n", idAxisZ)
	fmt.Fprintf(bw, "#%d=DIRECTION('',(1.,0.,0.));\n", idAxisX)
	fmt.Fprintf(bw, "#%d=FACETED_BREP('',#%d);\n", idBrep, idShell)

	// Face entities come in loop/bound/face triplets after the vertex
	// table.
	firstLoop := idFirstVertex + len(points)
	fmt.Fprintf(bw, "#%d=CLOSED_SHELL('',(", idShell)
	for i := range model {
		if i > 0 {
			bw.WriteByte(',')
		}
		fmt.Fprintf(bw, "#%d", firstLoop+3*i+2)
	}
	bw.WriteString("));\n")
	for i, p := range points {
		fmt.Fprintf(bw, "#%d=CARTESIAN_POINT('',(%s,%s,%s));\n", idFirstVertex+i, fmtReal(p.X), fmtReal(p.Y), fmtReal(p.Z))
	}
	for i, tri := range model {
		loop := firstLoop + 3*i
		fmt.Fprintf(bw, "#%d=POLY_LOOP('',(#%d,#%d,#%d));\n", loop,
			idFirstVertex+index[tri[0]], idFirstVertex+index[tri[1]], idFirstVertex+index[tri[2]])
		fmt.Fprintf(bw, "#%d=FACE_OUTER_BOUND('',#%d,.T.);\n", loop+1, loop)
		fmt.Fprintf(bw, "#%d=FACE('',(#%d));\n", loop+2, loop+1)
	}
	fmt.Fprintf(bw, "ENDSEC;\nEND-ISO-10303-21;\n")
	return bw.Flush()
}

func bad(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return true
		}
	}
	return false
}

// fmtReal formats v as a part 21 REAL token, which requires a decimal point
// in the mantissa.
func fmtReal(v float64) string {
	s := strconv.FormatFloat(v, 'G', -1, 64)
	mant, exp := s, ""
	if i := strings.IndexByte(s, 'E'); i >= 0 {
		mant, exp = s[:i], s[i:]
	}
	if !strings.ContainsRune(mant, '.') {
		mant += "."
	}
	return mant + exp
}

// escape doubles apostrophes per the part 21 string encoding.
func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

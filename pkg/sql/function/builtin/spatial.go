// Copyright 2021 - 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package builtin

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/matrixorigin/scalarcore/pkg/common/moerr"
	"github.com/matrixorigin/scalarcore/pkg/container/types"
	"github.com/matrixorigin/scalarcore/pkg/container/value"
	"github.com/matrixorigin/scalarcore/pkg/sql/function"
)

const (
	// WGS 84
	defaultSRID = 4326
	// slot of the factory built while preparing
	factorySlot = 0
)

// geometryFactory builds the geometries of one call site.
type geometryFactory struct {
	layout geom.Layout
	srid   int
}

func (gf *geometryFactory) point(x, y float64) *geom.Point {
	return geom.NewPointFlat(gf.layout, []float64{x, y}).SetSRID(gf.srid)
}

// geoPoint builds a point from a latitude and a longitude.
type geoPoint struct {
	function.Base
}

func (f *geoPoint) Prepare(ec *function.ExecutionContext, _ []function.PreptimeValue) error {
	return ec.SetPreptimeObject(factorySlot, &geometryFactory{layout: geom.XY, srid: defaultSRID})
}

func (f *geoPoint) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	lat, err := in.Get(0)
	if err != nil {
		return err
	}
	lon, err := in.Get(1)
	if err != nil {
		return err
	}
	if math.Abs(lat.Float64()) > 90 {
		return moerr.NewOutOfRange(ec.Context(), "latitude", "%v", lat.Float64())
	}
	if math.Abs(lon.Float64()) > 180 {
		return moerr.NewOutOfRange(ec.Context(), "longitude", "%v", lon.Float64())
	}
	gf, ok := function.PreptimeSlot[*geometryFactory](ec, factorySlot)
	if !ok {
		return moerr.NewInternalError(ec.Context(), "geometry factory is not prepared")
	}
	out.Put(value.NewObject(types.T_geometry, gf.point(lon.Float64(), lat.Float64())))
	return nil
}

func pointOf(ec *function.ExecutionContext, v value.Value) (*geom.Point, error) {
	p, ok := v.Object().(*geom.Point)
	if !ok {
		return nil, moerr.NewNotSupported(ec.Context(), "geometry %T", v.Object())
	}
	return p, nil
}

// geoDistance is the planar distance between two points.
type geoDistance struct {
	function.Base
}

func (f *geoDistance) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	a, err := in.Get(0)
	if err != nil {
		return err
	}
	b, err := in.Get(1)
	if err != nil {
		return err
	}
	pa, err := pointOf(ec, a)
	if err != nil {
		return err
	}
	pb, err := pointOf(ec, b)
	if err != nil {
		return err
	}
	out.Put(value.NewFloat64(math.Hypot(pa.X()-pb.X(), pa.Y()-pb.Y())))
	return nil
}

type geoWKT struct {
	function.Base
}

func (f *geoWKT) Evaluate(ec *function.ExecutionContext, in function.LazyInputs, out function.OutputSink) error {
	v, err := in.Get(0)
	if err != nil {
		return err
	}
	g, ok := v.Object().(geom.T)
	if !ok {
		return moerr.NewInternalError(ec.Context(), "geometry value holds %T", v.Object())
	}
	s, err := wkt.Marshal(g)
	if err != nil {
		return moerr.ConvertGoError(ec.Context(), err)
	}
	out.Put(value.NewString(s))
	return nil
}

// geoRelation is a spatial predicate not implemented yet.
type geoRelation struct {
	function.Base
}

func (f *geoRelation) Evaluate(ec *function.ExecutionContext, _ function.LazyInputs, _ function.OutputSink) error {
	return moerr.NewNYI(ec.Context(), "%s", f.DisplayName())
}

func spatialFunctions() []function.ScalarFunction {
	geometry := types.T_geometry.ToType()
	twoGeometries := function.NewInputBinding().Covers(types.T_geometry, 0, 1)
	return []function.ScalarFunction{
		&geoPoint{function.Base{
			FuncNames: []string{"GEO_POINT"},
			Binding:   function.NewInputBinding().Covers(types.T_float64, 0, 1),
			Result:    function.FixedResult(geometry),
		}},
		&geoDistance{function.Base{
			FuncNames: []string{"GEO_DISTANCE"},
			Binding:   twoGeometries,
			Result:    function.FixedResult(types.T_float64.ToType()),
		}},
		&geoWKT{function.Base{
			FuncNames: []string{"GEO_WKT"},
			Binding:   function.NewInputBinding().Covers(types.T_geometry, 0),
			Result:    function.FixedResult(types.T_varchar.ToType()),
		}},
		&geoRelation{function.Base{
			FuncNames: []string{"GEO_OVERLAPS"},
			Binding:   twoGeometries,
			Result:    function.FixedResult(types.T_bool.ToType()),
		}},
		&geoRelation{function.Base{
			FuncNames: []string{"GEO_CONTAINS"},
			Binding:   twoGeometries,
			Result:    function.FixedResult(types.T_bool.ToType()),
		}},
	}
}

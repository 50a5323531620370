// Package dataset reads GOES NetCDF files into memory and exposes what the
// rest of the toolkit needs from them: global attributes, variables, imagery
// channels, multispectral composites, and instrument fields of view.
package dataset

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"goesfetch/internal/composite"
	"goesfetch/internal/fov"
)

// Variable is one NetCDF variable. Values holds the stored array as
// decoded, before any scale factor or offset is applied: a scalar, []T, or
// [][]T of the stored type.
type Variable struct {
	Name   string
	Dims   []string
	Values any
	Attrs  map[string]any
}

// Attr returns a variable attribute.
func (v *Variable) Attr(name string) (any, bool) {
	val, ok := v.Attrs[name]
	return val, ok
}

// AttrString returns a string variable attribute, or "" when absent.
func (v *Variable) AttrString(name string) string {
	val, ok := v.Attrs[name]
	if !ok {
		return ""
	}
	return coerceString(val)
}

// AttrFloat returns a numeric variable attribute.
func (v *Variable) AttrFloat(name string) (float64, bool) {
	val, ok := v.Attrs[name]
	if !ok {
		return 0, false
	}
	return coerceFloat(val)
}

// grid unpacks the stored array into imagery values: the scale factor and
// offset are applied and fill values become NaN.
func (v *Variable) grid() (*composite.Grid, error) {
	scale := 1.0
	if s, ok := v.AttrFloat("scale_factor"); ok {
		scale = s
	}
	offset := 0.0
	if o, ok := v.AttrFloat("add_offset"); ok {
		offset = o
	}
	fill, hasFill := v.AttrFloat("_FillValue")

	rv := reflect.ValueOf(v.Values)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("variable %s is not an array", v.Name)
	}
	rows := make([][]float64, rv.Len())
	for y := range rows {
		rowv := rv.Index(y)
		if rowv.Kind() == reflect.Interface {
			rowv = rowv.Elem()
		}
		if rowv.Kind() != reflect.Slice {
			return nil, fmt.Errorf("variable %s is not two-dimensional", v.Name)
		}
		row := make([]float64, rowv.Len())
		for x := range row {
			raw, ok := toFloat(rowv.Index(x))
			if !ok {
				return nil, fmt.Errorf("variable %s holds non-numeric values", v.Name)
			}
			if hasFill && raw == fill {
				row[x] = math.NaN()
			} else {
				row[x] = raw*scale + offset
			}
		}
		rows[y] = row
	}
	g, err := composite.GridFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", v.Name, err)
	}
	return g, nil
}

// Dataset is a fully loaded NetCDF file. The file handle is released at
// open time; everything lives in memory.
type Dataset struct {
	name  string
	meta  map[string]string
	attrs map[string]any
	vars  map[string]*Variable
}

// New returns an empty dataset, useful for assembling one from scratch.
func New(name string) *Dataset {
	return &Dataset{
		name:  name,
		meta:  make(map[string]string),
		attrs: make(map[string]any),
		vars:  make(map[string]*Variable),
	}
}

// Name returns the dataset name, usually the file name without the .nc
// suffix.
func (d *Dataset) Name() string { return d.name }

// Meta returns an annotation set with SetMeta.
func (d *Dataset) Meta(key string) string { return d.meta[key] }

// SetMeta attaches an annotation that lives outside the file's own
// attributes, such as the archive key the file came from.
func (d *Dataset) SetMeta(key, value string) { d.meta[key] = value }

// Attr returns a global attribute.
func (d *Dataset) Attr(name string) (any, bool) {
	val, ok := d.attrs[name]
	return val, ok
}

// AttrString returns a string global attribute, or "" when absent.
func (d *Dataset) AttrString(name string) string {
	val, ok := d.attrs[name]
	if !ok {
		return ""
	}
	return coerceString(val)
}

// SetAttr sets a global attribute.
func (d *Dataset) SetAttr(name string, value any) { d.attrs[name] = value }

// Var returns a variable by name.
func (d *Dataset) Var(name string) (*Variable, bool) {
	v, ok := d.vars[name]
	return v, ok
}

// AddVariable adds or replaces a variable.
func (d *Dataset) AddVariable(v *Variable) { d.vars[v.Name] = v }

// Variables returns the variable names, sorted.
func (d *Dataset) Variables() []string {
	names := make([]string, 0, len(d.vars))
	for name := range d.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Channel returns the imagery grid for one ABI band, unpacked to physical
// values with fill pixels as NaN.
func (d *Dataset) Channel(band int) (*composite.Grid, error) {
	v, ok := d.Var(channelVar(band))
	if !ok {
		return nil, fmt.Errorf("no channel %d in %s: variable %s not present", band, d.name, channelVar(band))
	}
	return v.grid()
}

// ChannelUnits returns the units attribute for one ABI band.
func (d *Dataset) ChannelUnits(band int) (string, error) {
	v, ok := d.Var(channelVar(band))
	if !ok {
		return "", fmt.Errorf("no channel %d in %s: variable %s not present", band, d.name, channelVar(band))
	}
	return v.AttrString("units"), nil
}

func channelVar(band int) string { return fmt.Sprintf("CMI_C%02d", band) }

// Composite runs a named multispectral recipe against this file's
// channels.
func (d *Dataset) Composite(name string, opts ...composite.Option) (*composite.Image, error) {
	return composite.Produce(name, d, opts...)
}

// FieldOfView derives the instrument footprint from the file's navigation
// metadata.
func (d *Dataset) FieldOfView() (*fov.FieldOfView, error) {
	height, ok := d.scalarVar("nominal_satellite_height")
	if !ok {
		return nil, fmt.Errorf("%s: no nominal_satellite_height variable", d.name)
	}
	// The height variable is in kilometers.
	heightMeters := height * 1000

	title := d.AttrString("title")
	switch {
	case strings.HasPrefix(title, "ABI"):
		extent, ok := d.Var("geospatial_lat_lon_extent")
		if !ok {
			return nil, fmt.Errorf("%s: no geospatial_lat_lon_extent variable", d.name)
		}
		lon, lonOK := extent.AttrFloat("geospatial_lon_nadir")
		lat, latOK := extent.AttrFloat("geospatial_lat_nadir")
		if !lonOK || !latOK {
			return nil, fmt.Errorf("%s: geospatial_lat_lon_extent is missing its nadir attributes", d.name)
		}
		return fov.ABI(lon, lat, heightMeters), nil
	case strings.HasPrefix(title, "GLM"):
		lon, lonOK := d.scalarVar("lon_field_of_view")
		lat, latOK := d.scalarVar("lat_field_of_view")
		if !lonOK || !latOK {
			return nil, fmt.Errorf("%s: no lon_field_of_view and lat_field_of_view variables", d.name)
		}
		return fov.GLM(lon, lat, heightMeters), nil
	}
	return nil, fmt.Errorf("%s: no field of view for %q files", d.name, title)
}

// TimeCoverage returns the scan start and end from the global
// time_coverage attributes.
func (d *Dataset) TimeCoverage() (start, end time.Time, err error) {
	start, err = time.Parse(time.RFC3339, d.AttrString("time_coverage_start"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing time_coverage_start: %w", err)
	}
	end, err = time.Parse(time.RFC3339, d.AttrString("time_coverage_end"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing time_coverage_end: %w", err)
	}
	return start, end, nil
}

// scalarVar returns a scalar variable's value.
func (d *Dataset) scalarVar(name string) (float64, bool) {
	v, ok := d.Var(name)
	if !ok {
		return 0, false
	}
	rv := reflect.ValueOf(v.Values)
	if rv.Kind() == reflect.Slice {
		if rv.Len() != 1 {
			return 0, false
		}
		rv = rv.Index(0)
	}
	return toFloat(rv)
}

func toFloat(rv reflect.Value) (float64, bool) {
	if rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// coerceFloat handles attribute values stored either as a scalar or as a
// single-element array.
func coerceFloat(val any) (float64, bool) {
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Slice {
		if rv.Len() != 1 {
			return 0, false
		}
		rv = rv.Index(0)
	}
	return toFloat(rv)
}

func coerceString(val any) string {
	switch s := val.(type) {
	case string:
		return s
	case []string:
		if len(s) == 1 {
			return s[0]
		}
	}
	return ""
}

var _ composite.ChannelReader = (*Dataset)(nil)

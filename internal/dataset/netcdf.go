package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// ErrUnreadable indicates content the NetCDF reader could not parse. The
// usual cause is a truncated download; re-fetching with overwrite enabled
// repairs it.
var ErrUnreadable = errors.New("unreadable data file")

// Open reads the NetCDF file at path. The whole file is loaded before Open
// returns, so there is nothing to close afterwards.
func Open(path string) (*Dataset, error) {
	group, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrUnreadable, path, err)
	}
	defer group.Close()
	return fromGroup(datasetName(path), group)
}

// OpenBytes reads a NetCDF file already held in memory, as returned by an
// object store read.
func OpenBytes(name string, data []byte) (*Dataset, error) {
	group, err := netcdf.New(nopSeekCloser{bytes.NewReader(data)})
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrUnreadable, name, err)
	}
	defer group.Close()
	return fromGroup(datasetName(name), group)
}

type nopSeekCloser struct{ *bytes.Reader }

func (nopSeekCloser) Close() error { return nil }

// Loader adapts Open and OpenBytes to an interface shape for callers that
// take the reader as a dependency.
type Loader struct{}

func (Loader) Open(path string) (*Dataset, error) { return Open(path) }

func (Loader) OpenBytes(name string, data []byte) (*Dataset, error) {
	return OpenBytes(name, data)
}

func datasetName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".nc")
}

// fromGroup copies every variable and attribute out of the root group.
// GOES files are flat, so subgroups are not descended into.
func fromGroup(name string, group api.Group) (*Dataset, error) {
	d := New(name)
	d.attrs = attrMap(group.Attributes())
	for _, varName := range group.ListVariables() {
		v, err := group.GetVariable(varName)
		if err != nil {
			return nil, fmt.Errorf("reading variable %s of %s: %w", varName, name, err)
		}
		d.AddVariable(&Variable{
			Name:   varName,
			Dims:   v.Dimensions,
			Values: v.Values,
			Attrs:  attrMap(v.Attributes),
		})
	}
	return d, nil
}

func attrMap(attrs api.AttributeMap) map[string]any {
	out := make(map[string]any)
	if attrs == nil {
		return out
	}
	for _, key := range attrs.Keys() {
		if val, ok := attrs.Get(key); ok {
			out[key] = val
		}
	}
	return out
}

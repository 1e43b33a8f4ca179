package geo

import (
	"io"
	"os"
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"

	"github.com/devmap/devmap/pkg/errors"
)

// NameProperty is the feature property holding the region name.
const NameProperty = "name"

// RegionIndex serves projected bounding boxes of named regions.
// It is safe for concurrent use.
type RegionIndex struct {
	mu     sync.RWMutex
	shapes map[string]orb.Geometry
	bounds map[string]Bounds
}

// NewRegionIndex indexes the features of fc by their name property.
// Features without a name or geometry are skipped. Bounds are empty until
// Reproject is called.
func NewRegionIndex(fc *geojson.FeatureCollection) *RegionIndex {
	idx := &RegionIndex{
		shapes: make(map[string]orb.Geometry),
		bounds: make(map[string]Bounds),
	}
	if fc == nil {
		return idx
	}
	for _, f := range fc.Features {
		name, _ := f.Properties[NameProperty].(string)
		if name == "" || f.Geometry == nil {
			continue
		}
		if prev, ok := idx.shapes[name]; ok {
			idx.shapes[name] = merge(prev, f.Geometry)
			continue
		}
		idx.shapes[name] = f.Geometry
	}
	return idx
}

// ReadRegions parses a GeoJSON FeatureCollection.
func ReadRegions(r io.Reader) (*RegionIndex, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read regions")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse regions")
	}
	return NewRegionIndex(fc), nil
}

// ReadRegionsFile parses a GeoJSON file.
func ReadRegionsFile(path string) (*RegionIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "regions file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadRegions(f)
}

// Fork returns an index sharing this index's shapes with its own, empty
// bounds table. Each viewport projecting the same regions needs its own fork.
func (idx *RegionIndex) Fork() *RegionIndex {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return &RegionIndex{shapes: idx.shapes, bounds: make(map[string]Bounds)}
}

// Reproject recomputes every region's bounds with p. Regions whose
// projected bounds are not finite are dropped from the bounds table and
// report as unknown.
func (idx *RegionIndex) Reproject(p Projection) {
	proj := func(pt orb.Point) orb.Point {
		x, y := p.Project(pt.Lon(), pt.Lat())
		return orb.Point{x, y}
	}

	bounds := make(map[string]Bounds, len(idx.shapes))
	idx.mu.RLock()
	for name, g := range idx.shapes {
		b := BoundsFromOrb(project.Geometry(orb.Clone(g), proj).Bound())
		if finite(b.X) && finite(b.Y) && finite(b.Width) && finite(b.Height) {
			bounds[name] = b
		}
	}
	idx.mu.RUnlock()

	idx.mu.Lock()
	idx.bounds = bounds
	idx.mu.Unlock()
}

// Bounds implements BoundsProvider.
func (idx *RegionIndex) Bounds(region string) (Bounds, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	b, ok := idx.bounds[region]
	return b, ok
}

// Has reports whether a region with this name was loaded.
func (idx *RegionIndex) Has(region string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.shapes[region]
	return ok
}

// Names returns all region names in sorted order.
func (idx *RegionIndex) Names() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	names := make([]string, 0, len(idx.shapes))
	for name := range idx.shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of regions.
func (idx *RegionIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.shapes)
}

func merge(a, b orb.Geometry) orb.Geometry {
	if c, ok := a.(orb.Collection); ok {
		return append(c, b)
	}
	return orb.Collection{a, b}
}

var _ BoundsProvider = (*RegionIndex)(nil)

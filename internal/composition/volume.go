package composition

import "math"

// Packing selects the per-atom volume model for CovalentVolume.
type Packing string

const (
	// PackingCubes packs each atom in a cube of side 2r.
	PackingCubes Packing = "cubes"

	// PackingSpheres packs each atom in a sphere of radius r.
	PackingSpheres Packing = "spheres"
)

// CovalentVolume estimates the volume occupied by the composition from the
// covalent radius of each species:
//
//	sum(count * factor * r^3)
//
// with factor 8 for cubes and 4π/3 for spheres. Species without a
// tabulated radius contribute nothing.
func (c Composition) CovalentVolume(packing Packing) (float64, error) {
	var factor float64
	switch packing {
	case PackingCubes:
		factor = 8
	case PackingSpheres:
		factor = 4 * math.Pi / 3.0
	default:
		return 0, &InvalidArgumentError{
			Code:     ErrCodeInvalidPacking,
			Argument: "packing",
			Value:    string(packing),
		}
	}

	reg := c.registry()
	volume := 0.0
	// Alphabetical order keeps the float sum reproducible.
	for _, s := range c.Species() {
		r := reg.CovalentRadius(s)
		volume += factor * float64(c.counts[s]) * r * r * r
	}
	return volume, nil
}

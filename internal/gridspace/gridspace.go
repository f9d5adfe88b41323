// Package gridspace provides the flat-array indexing shared by every
// simulation grid. All per-cell simulation data lives in dense slices
// rather than per-cell objects, so every package that walks a grid needs
// the same row-major addressing.
package gridspace

// Index2D returns the flat offset of (x,y) in a width-W, row-major grid.
func Index2D(x, y, width int) int {
	return y*width + x
}

// Index3D returns the flat offset of (layer,x,y) in a layer-major,
// row-major W*H grid: layer*width*height + y*width + x.
func Index3D(layer, x, y, width, height int) int {
	return layer*width*height + y*width + x
}

// InBounds reports whether (x,y) falls within a width×height grid.
func InBounds(x, y, width, height int) bool {
	return x >= 0 && x < width && y >= 0 && y < height
}

// Moore8 lists the eight Moore-neighbourhood offsets, used by the surface
// flow kernel.
var Moore8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// VonNeumann4 lists the four cardinal offsets, used by dilation and
// subsurface horizontal flow.
var VonNeumann4 = [4][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
}

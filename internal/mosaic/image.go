// Package mosaic defines the two-dimensional 4-channel pixel buffer every
// raw decoder writes into and every later pipeline stage (demosaic,
// Foveon reconstruction, color projection) reads from.
package mosaic

// Site is one mosaic location: four 16-bit channels, of which only the
// one matching the CFA color at that site is populated until demosaic
// fills the rest. A uniform 4-wide pixel is kept regardless of the
// sensor's actual channel count so that CFA indexing stays branch-free
// across Bayer (3 colors), complementary (3 colors, but 4 coded values
// if four_color_rgb is requested), and Foveon (3 non-mosaic layers).
type Site [4]uint16

// Image is a row-major Height x Width array of Site values, allocated
// once the CameraProfile is known and mutated in place through the
// load -> black-subtract -> color-scale -> demosaic -> project pipeline.
type Image struct {
	Width, Height int
	Pix           []Site
}

// New allocates a zeroed Image of the given dimensions.
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]Site, width*height),
	}
}

// Index returns the flat Pix offset for (row, col). Callers on a hot path
// (raw decoders, demosaic) are expected to compute this once per row
// rather than per pixel.
func (im *Image) Index(row, col int) int { return row*im.Width + col }

// At returns a pointer to the site at (row, col) for in-place mutation.
func (im *Image) At(row, col int) *Site { return &im.Pix[im.Index(row, col)] }

// InBounds reports whether (row, col) lies within the image.
func (im *Image) InBounds(row, col int) bool {
	return row >= 0 && row < im.Height && col >= 0 && col < im.Width
}

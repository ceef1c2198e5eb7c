// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Rect is a viewport bounding rectangle in pixels, measured from the top-left corner of the window.
type Rect struct {
	Left   float32
	Top    float32
	Width  float32
	Height float32
}

// Aspect returns Width/Height, or 1 if the rectangle has no height.
func (r Rect) Aspect() float32 {
	if r.Height == 0 {
		return 1
	}
	return r.Width / r.Height
}

// Contains reports whether the pixel (x, y) falls inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.Left && x < r.Left+r.Width && y >= r.Top && y < r.Top+r.Height
}

// ToNDC converts pixel coordinates inside the rectangle into normalized device coordinates.
// X grows to the right and Y grows upward, both in [-1, 1] across the rectangle.
//
// Parameters:
//   - px, py: pointer position in window pixels
//
// Returns:
//   - float32: NDC x
//   - float32: NDC y
func (r Rect) ToNDC(px, py float32) (float32, float32) {
	x := (px-r.Left)/r.Width*2 - 1
	y := -((py-r.Top)/r.Height)*2 + 1
	return x, y
}

package engine

// clickSlop is how far, in pixels, the pointer may travel between press and release
// and still count as a click.
const clickSlop = 4

// pointer tells left-button clicks apart from drags.
type pointer struct {
	down   bool
	moved  bool
	startX int32
	startY int32
	lastX  int32
	lastY  int32
}

// press starts tracking a gesture at (x, y).
func (p *pointer) press(x, y int32) {
	p.down = true
	p.moved = false
	p.startX, p.startY = x, y
	p.lastX, p.lastY = x, y
}

// move records pointer motion and returns the delta since the last event. ok is
// false until the gesture has left the click slop.
func (p *pointer) move(x, y int32) (dx, dy float32, ok bool) {
	if !p.down {
		return 0, 0, false
	}
	dx, dy = float32(x-p.lastX), float32(y-p.lastY)
	p.lastX, p.lastY = x, y
	if !p.moved && (abs32(x-p.startX) > clickSlop || abs32(y-p.startY) > clickSlop) {
		p.moved = true
	}
	return dx, dy, p.moved
}

// release ends the gesture and reports whether it was a click.
func (p *pointer) release() bool {
	if !p.down {
		return false
	}
	p.down = false
	return !p.moved
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

package renderer

import (
	"context"
	"image"
	"image/color"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/paint-house/common"
)

// rowsPerBand is the minimum band height handed to one rasterization task.
const rowsPerBand = 16

// screenTriangle is a triangle after projection, clipping and per-vertex shading.
type screenTriangle struct {
	x, y, z [3]float32
	color   [3][3]float32

	minY, maxY int
}

type clipVertex struct {
	pos   [4]float32
	color [3]float32
}

type softwareRendererBackendImpl struct {
	mu   *sync.Mutex
	pool worker.DynamicWorkerPool

	width  int
	height int

	back  *image.RGBA
	front *image.RGBA
	depth []float32

	ready   chan struct{}
	flushed bool
}

var _ RendererBackend = &softwareRendererBackendImpl{}

// newSoftwareRendererBackend creates a z-buffer rasterizer that splits each frame into
// horizontal bands and rasterizes them on a worker pool.
func newSoftwareRendererBackend(width, height, workers int) RendererBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	b := &softwareRendererBackendImpl{
		mu:    &sync.Mutex{},
		pool:  worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
		ready: make(chan struct{}, 1),
	}
	b.resize(width, height)
	return b
}

func (b *softwareRendererBackendImpl) resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	b.width, b.height = width, height
	b.back = image.NewRGBA(image.Rect(0, 0, width, height))
	b.front = image.NewRGBA(image.Rect(0, 0, width, height))
	b.depth = make([]float32, width*height)
	b.flushed = false
}

func (b *softwareRendererBackendImpl) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resize(width, height)
}

func (b *softwareRendererBackendImpl) Draw(f *frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tris := b.project(f)
	bg := color.RGBA{toByte(f.clear[0]), toByte(f.clear[1]), toByte(f.clear[2]), 255}

	bandHeight := max(rowsPerBand, (b.height+b.pool.GetMaxWorkers()-1)/b.pool.GetMaxWorkers())

	// the pool's Wait blocks until workers idle out, so a WaitGroup is the barrier
	var wg sync.WaitGroup
	for y0, id := 0, 0; y0 < b.height; y0, id = y0+bandHeight, id+1 {
		y1 := min(y0+bandHeight, b.height)
		wg.Add(1)
		b.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				b.rasterizeBand(y0, y1, bg, tris)
				return nil, nil
			},
		})
	}
	wg.Wait()

	b.back, b.front = b.front, b.back
	b.flushed = true
	select {
	case b.ready <- struct{}{}:
	default:
	}
	return nil
}

func (b *softwareRendererBackendImpl) AwaitFrame(ctx context.Context) error {
	select {
	case <-b.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *softwareRendererBackendImpl) ReadImage() (*image.RGBA, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.flushed {
		return nil, ErrNoFrame
	}
	out := image.NewRGBA(b.front.Rect)
	copy(out.Pix, b.front.Pix)
	return out, nil
}

func (b *softwareRendererBackendImpl) Present() {}

func (b *softwareRendererBackendImpl) Release() {
	b.pool.Stop()
}

// --- projection ---

// project transforms every triangle of every item to screen space, shading each
// corner on the way. Triangles are clipped against the near plane (z >= 0 in clip
// space) and culled when they fall outside the target.
func (b *softwareRendererBackendImpl) project(f *frame) []screenTriangle {
	var out []screenTriangle
	w, h := float32(b.width), float32(b.height)

	for i := range f.items {
		item := &f.items[i]
		geo := item.geometry
		for t := 0; t < geo.TriangleCount(); t++ {
			shade, ok := item.shadeFor(t)
			if !ok {
				continue
			}

			var poly [3]clipVertex
			for k := 0; k < 3; k++ {
				idx := geo.Indices[t*3+k]
				p := common.TransformPoint(item.world[:], geo.Positions[idx])
				n := common.TransformDirection(item.world[:], geo.Normals[idx])
				poly[k] = clipVertex{
					pos:   common.TransformVec4(f.viewProj[:], [4]float32{p[0], p[1], p[2], 1}),
					color: ShadePoint(shade, p, n, f.eye, f.lighting),
				}
			}

			clipped := clipNear(poly[:])
			for k := 1; k+1 < len(clipped); k++ {
				st, visible := toScreen(clipped[0], clipped[k], clipped[k+1], w, h)
				if visible {
					out = append(out, st)
				}
			}
		}
	}
	return out
}

// clipNear clips a convex polygon against the z >= 0 half-space.
func clipNear(in []clipVertex) []clipVertex {
	out := make([]clipVertex, 0, len(in)+2)
	for i := range in {
		cur, next := in[i], in[(i+1)%len(in)]
		curIn, nextIn := cur.pos[2] >= 0, next.pos[2] >= 0
		if curIn {
			out = append(out, cur)
		}
		if curIn != nextIn {
			t := cur.pos[2] / (cur.pos[2] - next.pos[2])
			var v clipVertex
			for k := 0; k < 4; k++ {
				v.pos[k] = cur.pos[k] + (next.pos[k]-cur.pos[k])*t
			}
			for k := 0; k < 3; k++ {
				v.color[k] = cur.color[k] + (next.color[k]-cur.color[k])*t
			}
			out = append(out, v)
		}
	}
	return out
}

func toScreen(a, b, c clipVertex, w, h float32) (screenTriangle, bool) {
	var st screenTriangle
	verts := [3]clipVertex{a, b, c}
	for k, v := range verts {
		if v.pos[3] <= 0 {
			return st, false
		}
		inv := 1 / v.pos[3]
		st.x[k] = (v.pos[0]*inv + 1) * 0.5 * w
		st.y[k] = (1 - v.pos[1]*inv) * 0.5 * h
		st.z[k] = v.pos[2] * inv
		st.color[k] = v.color
	}

	area := (st.x[1]-st.x[0])*(st.y[2]-st.y[0]) - (st.y[1]-st.y[0])*(st.x[2]-st.x[0])
	if area == 0 {
		return st, false
	}

	minX := math32.Min(st.x[0], math32.Min(st.x[1], st.x[2]))
	maxX := math32.Max(st.x[0], math32.Max(st.x[1], st.x[2]))
	minY := math32.Min(st.y[0], math32.Min(st.y[1], st.y[2]))
	maxY := math32.Max(st.y[0], math32.Max(st.y[1], st.y[2]))
	if maxX < 0 || minX >= w || maxY < 0 || minY >= h {
		return st, false
	}
	st.minY = int(math32.Floor(minY))
	st.maxY = int(math32.Ceil(maxY))
	return st, true
}

// --- rasterization ---

// rasterizeBand clears rows [y0, y1) and draws every triangle that overlaps them.
// Bands never share rows, so tasks write disjoint parts of the buffers.
func (b *softwareRendererBackendImpl) rasterizeBand(y0, y1 int, bg color.RGBA, tris []screenTriangle) {
	for y := y0; y < y1; y++ {
		row := b.back.Pix[y*b.back.Stride : y*b.back.Stride+b.width*4]
		for x := 0; x < b.width; x++ {
			row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = bg.R, bg.G, bg.B, bg.A
			b.depth[y*b.width+x] = math32.MaxFloat32
		}
	}

	for i := range tris {
		st := &tris[i]
		if st.maxY < y0 || st.minY >= y1 {
			continue
		}
		b.fillTriangle(st, y0, y1)
	}
}

func (b *softwareRendererBackendImpl) fillTriangle(st *screenTriangle, y0, y1 int) {
	x0, x1, x2 := st.x[0], st.x[1], st.x[2]
	ya, yb, yc := st.y[0], st.y[1], st.y[2]

	area := (x1-x0)*(yc-ya) - (yb-ya)*(x2-x0)
	invArea := 1 / area

	minX := max(0, int(math32.Floor(math32.Min(x0, math32.Min(x1, x2)))))
	maxX := min(b.width-1, int(math32.Ceil(math32.Max(x0, math32.Max(x1, x2)))))
	minY := max(y0, st.minY)
	maxY := min(y1-1, st.maxY)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5

			// edge functions normalised by the signed area, so winding does not matter
			w0 := ((x2-x1)*(py-yb) - (yc-yb)*(px-x1)) * invArea
			w1 := ((x0-x2)*(py-yc) - (ya-yc)*(px-x2)) * invArea
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*st.z[0] + w1*st.z[1] + w2*st.z[2]
			if z > 1 {
				continue
			}
			di := y*b.width + x
			if z >= b.depth[di] {
				continue
			}
			b.depth[di] = z

			o := y*b.back.Stride + x*4
			for k := 0; k < 3; k++ {
				b.back.Pix[o+k] = toByte(w0*st.color[0][k] + w1*st.color[1][k] + w2*st.color[2][k])
			}
			b.back.Pix[o+3] = 255
		}
	}
}

// toByte converts a [0, 1] channel to 8 bits.
func toByte(v float32) uint8 {
	return uint8(common.Clamp01(v)*255 + 0.5)
}

package renderer

import (
	"context"
	"image"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/paint-house/common"
	"github.com/Carmen-Shannon/paint-house/engine/camera"
	"github.com/Carmen-Shannon/paint-house/engine/light"
	"github.com/Carmen-Shannon/paint-house/engine/material"
	"github.com/Carmen-Shannon/paint-house/engine/scene"
)

func frontCamera() camera.Camera {
	return camera.NewCamera(
		camera.WithController(camera.NewCameraController(camera.WithEye(common.Vec3{0, 0, 3}))),
		camera.WithAspect(1),
	)
}

func quad(name string, d material.Descriptor, z float32) scene.Node {
	return scene.NewMesh(name, scene.NewQuad(1), []material.Descriptor{d}, scene.WithTranslation(0, 0, z))
}

func graphOf(nodes ...scene.Node) scene.Graph {
	return scene.NewGraph(scene.WithName("test"), scene.WithRoot(scene.NewGroup("root", scene.WithChildren(nodes...))))
}

func renderOnce(t *testing.T, r Renderer, g scene.Graph) *image.RGBA {
	t.Helper()
	require.NoError(t, r.Render(g, frontCamera()))
	require.NoError(t, r.AwaitFrame(context.Background()))
	img, err := r.ReadImage()
	require.NoError(t, err)
	rgba, ok := img.(*image.RGBA)
	require.True(t, ok)
	return rgba
}

func newTestRenderer(t *testing.T, opts ...RendererBuilderOption) Renderer {
	t.Helper()
	r := NewRenderer(BackendTypeSoftware, append([]RendererBuilderOption{WithSize(64, 64), WithWorkers(4)}, opts...)...)
	t.Cleanup(r.Release)
	return r
}

func TestSoftwareRendersUnlitQuad(t *testing.T) {
	r := newTestRenderer(t)
	red := material.NewBasic(material.WithColor([3]float32{1, 0, 0}))

	img := renderOnce(t, r, graphOf(quad("wall", red, 0)))

	c := img.RGBAAt(32, 32)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, [4]uint8{c.R, c.G, c.B, c.A})

	corner := img.RGBAAt(0, 0)
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, [4]uint8{corner.R, corner.G, corner.B, corner.A})
	assert.Equal(t, uint64(1), r.FrameCount())
}

func TestSoftwareDepthTestKeepsNearestSurface(t *testing.T) {
	r := newTestRenderer(t)
	near := material.NewBasic(material.WithColor([3]float32{0, 1, 0}))
	far := material.NewBasic(material.WithColor([3]float32{1, 0, 0}))

	// the far quad is drawn last, so only the depth test keeps the near one on top
	img := renderOnce(t, r, graphOf(quad("near", near, 0.5), quad("far", far, 0)))

	c := img.RGBAAt(32, 32)
	assert.Equal(t, uint8(0), c.R)
	assert.Equal(t, uint8(255), c.G)
}

func TestSoftwareRenderPicksUpPaint(t *testing.T) {
	r := newTestRenderer(t)
	wall := material.NewStandard(material.WithColor([3]float32{1, 1, 1}), material.WithRoughness(0.3), material.WithMetalness(0.1))
	g := graphOf(quad("wall", wall, 0))

	before := renderOnce(t, r, g).RGBAAt(32, 32)
	assert.InDelta(t, before.R, before.B, 1, "white wall renders grey-neutral")

	wall.SetColor([3]float32{1, 0, 0})
	wall.MarkDirty()
	after := renderOnce(t, r, g).RGBAAt(32, 32)
	assert.Greater(t, after.R, after.G)
	assert.Greater(t, after.R, after.B)
}

func TestSoftwareSkipsHiddenDescriptors(t *testing.T) {
	r := newTestRenderer(t)
	hidden := material.NewBasic(material.WithColor([3]float32{0, 0, 0}))
	hidden.SetVisible(false)

	c := renderOnce(t, r, graphOf(quad("ghost", hidden, 0))).RGBAAt(32, 32)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(255), c.G)
}

func TestSoftwareClipsGeometryBehindTheCamera(t *testing.T) {
	r := newTestRenderer(t)
	blue := material.NewBasic(material.WithColor([3]float32{0, 0, 1}))
	// a floor reaching far behind the eye must be clipped, not smeared across the frame
	floorRotation := [4]float32{-0.70710677, 0, 0, 0.70710677}
	floor := scene.NewMesh("floor", scene.NewQuad(50), []material.Descriptor{blue},
		scene.WithTRS(common.Vec3{}, floorRotation, common.Vec3{1, 1, 1}))

	cam := camera.NewCamera(
		camera.WithController(camera.NewCameraController(
			camera.WithEye(common.Vec3{0, 0.5, 2}),
			camera.WithTarget(common.Vec3{0, 0.5, -10}),
		)),
		camera.WithAspect(1),
	)
	require.NoError(t, r.Render(graphOf(floor), cam))
	require.NoError(t, r.AwaitFrame(context.Background()))
	img, err := r.ReadImage()
	require.NoError(t, err)
	rgba := img.(*image.RGBA)

	below := rgba.RGBAAt(32, 60)
	assert.Equal(t, [3]uint8{0, 0, 255}, [3]uint8{below.R, below.G, below.B})
	above := rgba.RGBAAt(32, 4)
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{above.R, above.G, above.B})
}

func TestReadImageBeforeRender(t *testing.T) {
	r := newTestRenderer(t)
	_, err := r.ReadImage()
	assert.ErrorIs(t, err, ErrNoFrame)
}

func TestAwaitFrameHonoursContext(t *testing.T) {
	r := newTestRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.AwaitFrame(ctx), context.Canceled)

	require.NoError(t, r.Render(nil, frontCamera()))
	assert.NoError(t, r.AwaitFrame(context.Background()))
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderer(BackendTypeSoftware, WithSize(8, 8))
	assert.Error(t, r.Render(nil, nil))

	r.Release()
	r.Release()
	assert.ErrorIs(t, r.Render(nil, frontCamera()), ErrReleased)
}

func TestResizeAndViewport(t *testing.T) {
	r := newTestRenderer(t)
	assert.Equal(t, common.Rect{Width: 64, Height: 64}, r.Viewport())

	r.Resize(32, 16)
	assert.Equal(t, common.Rect{Width: 32, Height: 16}, r.Viewport())

	_, err := r.ReadImage()
	assert.ErrorIs(t, err, ErrNoFrame, "resizing drops the old frame")

	img := renderOnce(t, r, nil)
	assert.Equal(t, image.Rect(0, 0, 32, 16), img.Bounds())
}

func TestParseBackendType(t *testing.T) {
	tests := []struct {
		name    string
		want    RendererBackendType
		wantErr bool
	}{
		{"", BackendTypeSoftware, false},
		{"Software", BackendTypeSoftware, false},
		{"wgpu", BackendTypeWGPU, false},
		{"WebGPU", BackendTypeWGPU, false},
		{"vulkan", BackendTypeSoftware, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBackendType(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownBackend)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "wgpu", BackendTypeWGPU.String())
}

func TestShadePoint(t *testing.T) {
	lt := NewLighting(light.NewRig(
		light.NewLight(light.LightTypeAmbient, light.WithIntensity(0.2)),
		light.NewLight(light.LightTypeDirectional, light.WithPosition(0, 0, 10), light.WithIntensity(0.8)),
	))
	s := Shade{Color: [3]float32{1, 0, 0}, Roughness: 0.3, Metalness: 0.1}
	eye := common.Vec3{0, 0, 5}

	lit := ShadePoint(s, common.Vec3{}, common.Vec3{0, 0, 1}, eye, lt)
	grazing := ShadePoint(s, common.Vec3{}, common.Vec3{1, 0, 0.1}, eye, lt)
	assert.Greater(t, lit[0], grazing[0])
	assert.InDelta(t, 0, lit[1], 0.1, "a red surface stays red")

	flipped := ShadePoint(s, common.Vec3{}, common.Vec3{0, 0, -1}, eye, lt)
	assert.Equal(t, lit, flipped, "both faces shade alike")

	unlit := ShadePoint(Shade{Color: [3]float32{0.2, 0.4, 0.6}, Unlit: true}, common.Vec3{}, common.Vec3{0, 1, 0}, eye, lt)
	assert.Equal(t, [3]float32{0.2, 0.4, 0.6}, unlit)

	full := ShadePoint(Shade{Color: [3]float32{0.5, 0.5, 0.5}, Roughness: 1}, common.Vec3{}, common.Vec3{0, 0, 1}, eye, NewLighting(nil))
	assert.InDelta(t, 0.5, full[0], 1e-6)
}

func TestShadeFromDescriptor(t *testing.T) {
	std := material.NewStandard(material.WithRoughness(0.3), material.WithMetalness(0.1))
	s, ok := ShadeFromDescriptor(std)
	require.True(t, ok)
	assert.InDelta(t, 0.3, s.Roughness, 1e-6)
	assert.False(t, s.Unlit)

	s, ok = ShadeFromDescriptor(material.NewBasic())
	require.True(t, ok)
	assert.True(t, s.Unlit)

	_, ok = ShadeFromDescriptor(nil)
	assert.False(t, ok)
}

func TestClipNear(t *testing.T) {
	in := []clipVertex{
		{pos: [4]float32{0, 0, 1, 1}},
		{pos: [4]float32{1, 0, -1, 1}},
		{pos: [4]float32{0, 1, 1, 1}},
	}
	out := clipNear(in)
	require.Len(t, out, 4, "one vertex behind turns the triangle into a quad")
	for _, v := range out {
		assert.GreaterOrEqual(t, v.pos[2], float32(0))
	}
	assert.Empty(t, clipNear([]clipVertex{
		{pos: [4]float32{0, 0, -1, 1}},
		{pos: [4]float32{1, 0, -1, 1}},
		{pos: [4]float32{0, 1, -2, 1}},
	}))
}

func TestWGPUPackingHelpers(t *testing.T) {
	assert.Equal(t, uint32(256), paddedRowSize(1))
	assert.Equal(t, uint32(256), paddedRowSize(64))
	assert.Equal(t, uint32(512), paddedRowSize(65))

	f := buildFrame(graphOf(quad("wall", material.NewBasic(), 0)), frontCamera(), nil, 8, 8, [3]float32{})
	require.Len(t, f.items, 1)
	assert.Len(t, packVertices(f), 2*3*vertexStride)
	assert.Len(t, packFrameUniform(f), frameUniformSize)
	assert.Len(t, packLightUniform(nil), lightUniformSize())
	assert.Len(t, packLightUniform(light.DefaultRig()), lightUniformSize())

	data := make([]byte, 256*2)
	copy(data, []byte{1, 2, 3, 0})
	copy(data[256:], []byte{4, 5, 6, 0})
	img := unpackRows(data, 1, 2, 256, true)
	assert.Equal(t, []uint8{3, 2, 1, 255}, img.Pix[0:4])
	assert.Equal(t, []uint8{6, 5, 4, 255}, img.Pix[4:8])
	assert.True(t, isBGRA(wgpu.TextureFormatBGRA8Unorm))
}

func TestBuildFrameCullsOffscreenMeshes(t *testing.T) {
	behind := quad("behind", material.NewBasic(), 10)
	f := buildFrame(graphOf(quad("wall", material.NewBasic(), 0), behind), frontCamera(), nil, 8, 8, [3]float32{})
	assert.Len(t, f.items, 1)
}

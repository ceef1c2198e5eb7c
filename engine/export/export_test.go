package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, c color.RGBA, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "extension appended", in: "house", want: filepath.Join("out", "house.pdf")},
		{name: "extension kept", in: "house.pdf", want: filepath.Join("out", "house.pdf")},
		{name: "extension case-insensitive", in: "house.PDF", want: filepath.Join("out", "house.PDF")},
		{name: "other extension kept as stem", in: "house.v2", want: filepath.Join("out", "house.v2.pdf")},
		{name: "blank", in: "  ", wantErr: ErrEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := artifactPath("out", tt.in, ".pdf")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPDFSinkWritesDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := NewPDFSink(WithOutputDir(dir))

	w, h := s.PageSize()
	assert.Equal(t, PageWidth, w)
	assert.Equal(t, PageHeight, h)

	img := solidPNG(t, color.RGBA{255, 0, 0, 255}, 8, 8)
	require.NoError(t, s.PlaceImage(img, 5, 5, 100, 100))
	require.NoError(t, s.PlaceImage(img, 110, 5, 100, 100))
	require.NoError(t, s.PlaceText("Colors", 5, 220))
	require.NoError(t, s.AddPage())
	require.NoError(t, s.PlaceText("#FF0000", 5, 10))

	path, err := s.Finalize("house")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "house.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestPDFSinkRejectsCallsAfterFinalize(t *testing.T) {
	s := NewPDFSink(WithOutputDir(t.TempDir()))
	_, err := s.Finalize("once")
	require.NoError(t, err)

	_, err = s.Finalize("twice")
	assert.ErrorIs(t, err, ErrFinalized)
	assert.ErrorIs(t, s.PlaceText("x", 0, 0), ErrFinalized)
	assert.ErrorIs(t, s.AddPage(), ErrFinalized)
}

func TestPDFSinkRejectsBadImage(t *testing.T) {
	s := NewPDFSink(WithOutputDir(t.TempDir()))
	assert.Error(t, s.PlaceImage([]byte("not a png"), 0, 0, 10, 10))
}

func TestSheetSinkComposesPages(t *testing.T) {
	dir := t.TempDir()
	s := NewSheetSink(WithOutputDir(dir), WithPixelsPerUnit(1))

	require.NoError(t, s.PlaceImage(solidPNG(t, color.RGBA{255, 0, 0, 255}, 4, 4), 5, 5, 100, 100))
	require.NoError(t, s.AddPage())
	require.NoError(t, s.PlaceImage(solidPNG(t, color.RGBA{0, 0, 255, 255}, 4, 4), 5, 5, 100, 100))
	require.NoError(t, s.PlaceText("#0000FF", 5, 150))

	path, err := s.Finalize("sheet")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sheet.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 210, 594), img.Bounds())

	// resampling may shave a unit off a solid channel
	r, g, b, _ := img.At(50, 50).RGBA()
	assert.Greater(t, r, uint32(0xf000))
	assert.Less(t, g, uint32(0x1000))
	assert.Less(t, b, uint32(0x1000))

	r, g, b, _ = img.At(50, 297+50).RGBA()
	assert.Less(t, r, uint32(0x1000))
	assert.Less(t, g, uint32(0x1000))
	assert.Greater(t, b, uint32(0xf000))

	r, g, b, _ = img.At(200, 290).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})

	dark := false
	for y := 297 + 140; y < 297+152 && !dark; y++ {
		for x := 5; x < 60; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				dark = true
				break
			}
		}
	}
	assert.True(t, dark, "inventory text should be drawn on the second page")
}

func TestSheetSinkRejectsBadImage(t *testing.T) {
	s := NewSheetSink(WithOutputDir(t.TempDir()))
	assert.Error(t, s.PlaceImage([]byte{1, 2, 3}, 0, 0, 10, 10))
}

func TestRecorderTracksPages(t *testing.T) {
	r := NewRecorder()
	sink, err := r.Factory()()
	require.NoError(t, err)

	img := solidPNG(t, color.RGBA{0, 255, 0, 255}, 2, 2)
	require.NoError(t, sink.PlaceImage(img, 1, 2, 3, 4))
	require.NoError(t, sink.PlaceText("a", 5, 6))
	require.NoError(t, sink.AddPage())
	require.NoError(t, sink.PlaceText("b", 7, 8))
	assert.Error(t, sink.PlaceImage([]byte("junk"), 0, 0, 1, 1))

	path, err := sink.Finalize("doc")
	require.NoError(t, err)
	assert.Equal(t, "doc.rec", path)

	assert.Equal(t, []PlacedImage{{Page: 1, PNG: img, X: 1, Y: 2, W: 3, H: 4}}, r.Images())
	assert.Equal(t, []PlacedText{{Page: 1, Text: "a", X: 5, Y: 6}, {Page: 2, Text: "b", X: 7, Y: 8}}, r.Texts())
	assert.Equal(t, 2, r.Pages())

	name, ok := r.Finalized()
	assert.True(t, ok)
	assert.Equal(t, "doc", name)
	assert.ErrorIs(t, sink.AddPage(), ErrFinalized)
}

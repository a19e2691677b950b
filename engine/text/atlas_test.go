package text

import (
	"errors"
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/lightsky/engine/core"
	"github.com/hubastard/lightsky/engine/gfx/soft"
)

// solidGlyphs returns n glyphs of w x h filled with byte(i+1).
func solidGlyphs(n, w, h int) GlyphSet {
	set := make(GlyphSet, n)
	for i := range set {
		px := make([]byte, w*h)
		for j := range px {
			px[j] = byte(i + 1)
		}
		set[i] = Glyph{
			Size:    image.Point{X: w, Y: h},
			Bearing: mgl32.Vec2{1, float32(h)},
			Advance: mgl32.Vec2{float32(w + 2), float32(h + 4)},
			Pixels:  px,
		}
	}
	return set
}

// faultDevice wraps a soft.Device, counts calls and injects failures.
type faultDevice struct {
	*soft.Device
	calls      int
	createErr  error
	failUpload map[int]bool // by upload call index
	uploads    int
	alignments []int
}

var errInjected = errors.New("injected upload failure")

func newFaultDevice() *faultDevice { return &faultDevice{Device: soft.NewDevice()} }

func (d *faultDevice) CreateTexture(desc core.TextureDesc) (core.Texture, error) {
	d.calls++
	if d.createErr != nil {
		return nil, d.createErr
	}
	return d.Device.CreateTexture(desc)
}

func (d *faultDevice) UpdateTexture(t core.Texture, x, y, w, h int, px []byte) error {
	d.calls++
	i := d.uploads
	d.uploads++
	if d.failUpload[i] {
		return errInjected
	}
	return d.Device.UpdateTexture(t, x, y, w, h, px)
}

func (d *faultDevice) DeleteTexture(t core.Texture) {
	d.calls++
	d.Device.DeleteTexture(t)
}

func (d *faultDevice) SetUnpackAlignment(n int) {
	d.calls++
	d.alignments = append(d.alignments, n)
	d.Device.SetUnpackAlignment(n)
}

func (d *faultDevice) MaxTextureSize() int {
	d.calls++
	return d.Device.MaxTextureSize()
}

func (d *faultDevice) CheckError() error {
	d.calls++
	return d.Device.CheckError()
}

func assertEmpty(t *testing.T, a *Atlas) {
	t.Helper()
	if a.Loaded() || a.Texture() != nil || a.EntryCount() != 0 {
		t.Fatalf("atlas not empty: loaded=%v entries=%d", a.Loaded(), a.EntryCount())
	}
	if w, h := a.TextureSize(); w != 0 || h != 0 {
		t.Fatalf("empty atlas texture size = %dx%d", w, h)
	}
}

func TestAtlasFourGlyphs(t *testing.T) {
	dev := soft.NewDevice()
	var a Atlas
	if err := a.Load(dev, solidGlyphs(4, 10, 10)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer a.Unload()

	if cols, rows := a.Dimension(); cols != 2 || rows != 2 {
		t.Fatalf("Dimension = %dx%d, want 2x2", cols, rows)
	}
	if w, h := a.TextureSize(); w != 20 || h != 20 {
		t.Fatalf("TextureSize = %dx%d, want 20x20", w, h)
	}
	if a.EntryCount() != 4 {
		t.Fatalf("EntryCount = %d, want 4", a.EntryCount())
	}

	// column-major: entry 1 is below entry 0, entry 2 to its right
	wantTL := []mgl32.Vec2{{0, 0}, {0, 10}, {10, 0}, {10, 10}}
	for i, tl := range wantTL {
		e := a.EntryAt(i)
		if e.UV[0] != tl {
			t.Errorf("entry %d top-left = %v, want %v", i, e.UV[0], tl)
		}
		if want := tl.Add(mgl32.Vec2{10, 10}); e.UV[1] != want {
			t.Errorf("entry %d bottom-right = %v, want %v", i, e.UV[1], want)
		}
	}

	tex := a.Texture().(*soft.Texture)
	if tex.Format() != core.TextureR8 || tex.Target() != core.TargetRectangle {
		t.Fatalf("texture is %s/%v", tex.Format(), tex.Target())
	}
	img, err := tex.Alpha()
	if err != nil {
		t.Fatal(err)
	}
	probes := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 1}, {9, 9, 1},
		{5, 15, 2},
		{15, 5, 3},
		{10, 10, 4}, {19, 19, 4},
	}
	for _, p := range probes {
		if got := img.AlphaAt(p.x, p.y).A; got != p.want {
			t.Errorf("texel (%d,%d) = %d, want %d", p.x, p.y, got, p.want)
		}
	}
}

func TestAtlasSquareCounts(t *testing.T) {
	tests := []struct {
		n, dim int
	}{
		{1, 1}, {2, 1}, {3, 1}, {4, 2}, {5, 2}, {8, 2}, {9, 3}, {10, 3},
		{15, 3}, {16, 4}, {17, 4}, {100, 10}, {255, 15}, {256, 16},
	}
	for _, tt := range tests {
		dev := soft.NewDevice()
		var a Atlas
		if err := a.Load(dev, solidGlyphs(tt.n, 3, 5)); err != nil {
			t.Fatalf("Load(%d): %v", tt.n, err)
		}
		if got := a.EntryCount(); got != tt.dim*tt.dim {
			t.Errorf("n=%d EntryCount = %d, want %d", tt.n, got, tt.dim*tt.dim)
		}
		if w, h := a.TextureSize(); w != 3*tt.dim || h != 5*tt.dim {
			t.Errorf("n=%d TextureSize = %dx%d, want %dx%d", tt.n, w, h, 3*tt.dim, 5*tt.dim)
		}
		tex := a.Texture()
		if tex.Width() != 3*tt.dim || tex.Height() != 5*tt.dim {
			t.Errorf("n=%d texture = %dx%d", tt.n, tex.Width(), tex.Height())
		}
		a.Unload()
		if dev.LiveTextures() != 0 {
			t.Errorf("n=%d leaked %d textures", tt.n, dev.LiveTextures())
		}
	}
}

// mixedGlyphs has a different bitmap size and metrics per glyph.
func mixedGlyphs(n int) GlyphSet {
	set := make(GlyphSet, n)
	for i := range set {
		w, h := 1+i%5, 2+i%3
		set[i] = Glyph{
			Size:    image.Point{X: w, Y: h},
			Bearing: mgl32.Vec2{float32(i % 2), float32(h)},
			Advance: mgl32.Vec2{float32(w + i%4), 9},
			Pixels:  make([]byte, w*h),
		}
	}
	return set
}

func TestAtlasEntryMetrics(t *testing.T) {
	src := mixedGlyphs(20)
	var a Atlas
	if err := a.Load(soft.NewDevice(), src); err != nil {
		t.Fatal(err)
	}
	defer a.Unload()

	dim := float32(4)
	for i := 0; i < a.EntryCount(); i++ {
		g, e := src.GlyphAt(i), a.EntryAt(i)
		size := mgl32.Vec2{float32(g.Size.X), float32(g.Size.Y)}
		if got := e.UV[1].Sub(e.UV[0]); got != size {
			t.Errorf("entry %d UV extent = %v, want %v", i, got, size)
		}
		if !e.Size.ApproxEqual(size.Mul(1 / dim)) {
			t.Errorf("entry %d size = %v, want %v", i, e.Size, size.Mul(1/dim))
		}
		if !e.Advance.ApproxEqual(g.Advance.Mul(1 / dim)) {
			t.Errorf("entry %d advance = %v", i, e.Advance)
		}
		if !e.Bearing.ApproxEqual(g.Bearing.Mul(1 / dim)) {
			t.Errorf("entry %d bearing = %v", i, e.Bearing)
		}
		// cells are the per-axis maximum, 5x4
		x, y := i/4, i%4
		if want := (mgl32.Vec2{float32(5 * x), float32(4 * y)}); e.UV[0] != want {
			t.Errorf("entry %d top-left = %v, want %v", i, e.UV[0], want)
		}
	}
}

func TestAtlasReloadIsIdempotent(t *testing.T) {
	dev := soft.NewDevice()
	src := mixedGlyphs(30)

	var a Atlas
	if err := a.Load(dev, src); err != nil {
		t.Fatal(err)
	}
	first := append([]AtlasEntry(nil), a.Entries()...)
	w1, h1 := a.TextureSize()

	a.Unload()
	assertEmpty(t, &a)
	a.Unload()

	if err := a.Load(dev, src); err != nil {
		t.Fatal(err)
	}
	// a second Load releases the first texture
	if err := a.Load(dev, src); err != nil {
		t.Fatal(err)
	}
	if dev.LiveTextures() != 1 {
		t.Fatalf("LiveTextures = %d, want 1", dev.LiveTextures())
	}
	if w, h := a.TextureSize(); w != w1 || h != h1 {
		t.Fatalf("TextureSize %dx%d, want %dx%d", w, h, w1, h1)
	}
	if len(first) != a.EntryCount() {
		t.Fatalf("EntryCount %d, want %d", a.EntryCount(), len(first))
	}
	for i, e := range first {
		if a.EntryAt(i) != e {
			t.Errorf("entry %d changed: %v vs %v", i, a.EntryAt(i), e)
		}
	}
	a.Unload()
	if dev.LiveTextures() != 0 {
		t.Fatalf("LiveTextures = %d after Unload", dev.LiveTextures())
	}
}

func TestAtlasRejectsEmptySource(t *testing.T) {
	tests := []struct {
		name string
		src  GlyphSource
	}{
		{"no glyphs", GlyphSet{}},
		{"empty bitmaps", GlyphSet{{Advance: mgl32.Vec2{4, 0}}, {Advance: mgl32.Vec2{4, 0}}}},
	}
	for _, tt := range tests {
		dev := newFaultDevice()
		var a Atlas
		err := a.Load(dev, tt.src)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", tt.name, err)
		}
		assertEmpty(t, &a)
		if dev.calls != 0 {
			t.Errorf("%s: %d device calls, want none", tt.name, dev.calls)
		}
	}
}

func TestAtlasFailedReloadLeavesEmpty(t *testing.T) {
	dev := soft.NewDevice()
	var a Atlas
	if err := a.Load(dev, solidGlyphs(4, 2, 2)); err != nil {
		t.Fatal(err)
	}
	if err := a.Load(dev, GlyphSet{}); err == nil {
		t.Fatal("expected error")
	}
	assertEmpty(t, &a)
	if dev.LiveTextures() != 0 {
		t.Fatalf("previous texture not released: %d live", dev.LiveTextures())
	}
}

func TestAtlasAllocationFailure(t *testing.T) {
	t.Run("device limit", func(t *testing.T) {
		dev := soft.NewDevice()
		dev.MaxSize = 15
		var a Atlas
		err := a.Load(dev, solidGlyphs(4, 10, 10))
		if !errors.Is(err, ErrAllocation) {
			t.Fatalf("err = %v, want ErrAllocation", err)
		}
		assertEmpty(t, &a)
		if dev.LiveTextures() != 0 {
			t.Fatalf("LiveTextures = %d", dev.LiveTextures())
		}
	})
	t.Run("create fails", func(t *testing.T) {
		dev := newFaultDevice()
		cause := errors.New("out of memory")
		dev.createErr = cause
		var a Atlas
		err := a.Load(dev, solidGlyphs(4, 10, 10))
		if !errors.Is(err, ErrAllocation) || !errors.Is(err, cause) {
			t.Fatalf("err = %v, want ErrAllocation wrapping cause", err)
		}
		assertEmpty(t, &a)
		if dev.uploads != 0 || len(dev.alignments) != 0 {
			t.Fatalf("uploads=%d alignments=%v after failed allocation", dev.uploads, dev.alignments)
		}
	})
}

func TestAtlasUnpackAlignment(t *testing.T) {
	// 3-wide rows are not 4-byte aligned; the load only succeeds when the
	// upload runs at alignment 1.
	dev := newFaultDevice()
	var a Atlas
	if err := a.LoadWithOptions(dev, solidGlyphs(9, 3, 3), AtlasOptions{Strict: true}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := dev.UnpackAlignment(); got != core.DefaultUnpackAlignment {
		t.Fatalf("alignment after Load = %d, want %d", got, core.DefaultUnpackAlignment)
	}
	if want := []int{1, core.DefaultUnpackAlignment}; len(dev.alignments) != 2 || dev.alignments[0] != want[0] || dev.alignments[1] != want[1] {
		t.Fatalf("alignment calls = %v, want %v", dev.alignments, want)
	}

	// the same upload outside the scope fails
	if err := dev.Device.UpdateTexture(a.Texture(), 0, 0, 3, 3, make([]byte, 9)); err == nil {
		t.Fatal("unaligned upload at alignment 4 should fail")
	}
}

func TestAtlasUploadFailure(t *testing.T) {
	t.Run("lenient", func(t *testing.T) {
		dev := newFaultDevice()
		dev.failUpload = map[int]bool{2: true}
		var a Atlas
		if err := a.Load(dev, solidGlyphs(4, 4, 4)); err != nil {
			t.Fatalf("Load: %v", err)
		}
		defer a.Unload()
		if a.UploadErrors() != 1 || a.EntryCount() != 4 {
			t.Fatalf("UploadErrors=%d EntryCount=%d", a.UploadErrors(), a.EntryCount())
		}
		if want := (mgl32.Vec2{4, 0}); a.EntryAt(2).UV[0] != want {
			t.Fatalf("failed glyph keeps its cell: got %v", a.EntryAt(2).UV[0])
		}
		img, _ := a.Texture().(*soft.Texture).Alpha()
		if img.AlphaAt(5, 1).A != 0 {
			t.Fatal("failed glyph should leave its cell blank")
		}
		if img.AlphaAt(5, 5).A != 4 {
			t.Fatal("upload should continue past a failed glyph")
		}
	})
	t.Run("strict", func(t *testing.T) {
		dev := newFaultDevice()
		dev.failUpload = map[int]bool{2: true}
		var a Atlas
		err := a.LoadWithOptions(dev, solidGlyphs(4, 4, 4), AtlasOptions{Strict: true})
		if !errors.Is(err, ErrUpload) || !errors.Is(err, errInjected) {
			t.Fatalf("err = %v, want ErrUpload wrapping the device error", err)
		}
		assertEmpty(t, &a)
		if dev.LiveTextures() != 0 {
			t.Fatalf("texture not released: %d live", dev.LiveTextures())
		}
		if dev.UnpackAlignment() != core.DefaultUnpackAlignment {
			t.Fatalf("alignment = %d after failed upload", dev.UnpackAlignment())
		}
		if dev.uploads != 3 {
			t.Fatalf("uploads = %d, want stop at the failing glyph", dev.uploads)
		}
	})
}

func TestAtlasSkipsEmptyGlyphUpload(t *testing.T) {
	src := solidGlyphs(4, 2, 2)
	src[1] = Glyph{Advance: mgl32.Vec2{6, 0}}
	dev := newFaultDevice()
	var a Atlas
	if err := a.Load(dev, src); err != nil {
		t.Fatal(err)
	}
	defer a.Unload()
	if dev.uploads != 3 {
		t.Fatalf("uploads = %d, want 3", dev.uploads)
	}
	e := a.EntryAt(1)
	if e.UV[0] != e.UV[1] || e.Size != (mgl32.Vec2{}) {
		t.Fatalf("empty glyph entry = %+v", e)
	}
	if !e.Advance.ApproxEqual(mgl32.Vec2{3, 0}) {
		t.Fatalf("empty glyph advance = %v", e.Advance)
	}
}

func TestAtlasCoverLayout(t *testing.T) {
	dev := soft.NewDevice()
	var a Atlas
	if err := a.LoadWithOptions(dev, solidGlyphs(10, 2, 2), AtlasOptions{Layout: LayoutCover}); err != nil {
		t.Fatal(err)
	}
	defer a.Unload()
	if cols, rows := a.Dimension(); cols != 4 || rows != 3 {
		t.Fatalf("Dimension = %dx%d, want 4x3", cols, rows)
	}
	if a.EntryCount() != 10 {
		t.Fatalf("EntryCount = %d, want 10", a.EntryCount())
	}
	if w, h := a.TextureSize(); w != 8 || h != 6 {
		t.Fatalf("TextureSize = %dx%d", w, h)
	}
	if want := (mgl32.Vec2{2, 0}); a.EntryAt(3).UV[0] != want {
		t.Fatalf("entry 3 top-left = %v, want %v", a.EntryAt(3).UV[0], want)
	}
	if want := (mgl32.Vec2{6, 0}); a.EntryAt(9).UV[0] != want {
		t.Fatalf("entry 9 top-left = %v, want %v", a.EntryAt(9).UV[0], want)
	}
	if want := (mgl32.Vec2{0.5, 2.0 / 3}); !a.EntryAt(0).Size.ApproxEqual(want) {
		t.Fatalf("entry 0 size = %v, want %v", a.EntryAt(0).Size, want)
	}
}

func TestAtlasMove(t *testing.T) {
	dev := soft.NewDevice()
	var a Atlas
	if err := a.Load(dev, solidGlyphs(4, 3, 3)); err != nil {
		t.Fatal(err)
	}
	tex := a.Texture()
	want := append([]AtlasEntry(nil), a.Entries()...)

	b := a.Move()
	assertEmpty(t, &a)
	a.Unload()
	if b.Texture() != tex || b.EntryCount() != len(want) {
		t.Fatal("moved atlas lost its contents")
	}
	for i := range want {
		if b.EntryAt(i) != want[i] {
			t.Fatalf("entry %d differs after move", i)
		}
	}
	if dev.LiveTextures() != 1 {
		t.Fatalf("LiveTextures = %d, want 1", dev.LiveTextures())
	}

	// MoveFrom releases what the destination held
	var c Atlas
	if err := c.Load(dev, solidGlyphs(9, 1, 1)); err != nil {
		t.Fatal(err)
	}
	old := c.Texture().(*soft.Texture)
	c.MoveFrom(b)
	if !old.Deleted() {
		t.Fatal("destination texture not released")
	}
	assertEmpty(t, b)
	if c.Texture() != tex {
		t.Fatal("MoveFrom did not take the texture")
	}
	c.MoveFrom(&c)
	if !c.Loaded() {
		t.Fatal("self move emptied the atlas")
	}
	c.Unload()
	if dev.LiveTextures() != 0 {
		t.Fatalf("LiveTextures = %d after Unload", dev.LiveTextures())
	}
}

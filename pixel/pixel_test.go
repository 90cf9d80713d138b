package pixel

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cocosip/go-openjpeg/engine"
	"github.com/cocosip/go-openjpeg/imagedata"
)

func TestBytesPerSample(t *testing.T) {
	tests := []struct{ prec, want int }{
		{1, 1}, {7, 1}, {8, 1},
		{9, 2}, {12, 2}, {16, 2},
		{17, 4}, {24, 4}, {32, 4},
	}
	for _, tt := range tests {
		if got := BytesPerSample(tt.prec); got != tt.want {
			t.Errorf("BytesPerSample(%d) = %d, want %d", tt.prec, got, tt.want)
		}
	}
}

func TestInterleave8Bit(t *testing.T) {
	r := []int32{1, 2}
	g := []int32{3, 4}
	b := []int32{5, 6}
	out := make([]byte, 6)
	if err := Interleave([][]int32{r, g, b}, 8, false, out); err != nil {
		t.Fatalf("Interleave failed: %v", err)
	}
	want := []byte{1, 3, 5, 2, 4, 6}
	if !bytes.Equal(out, want) {
		t.Errorf("Interleave = %v, want %v", out, want)
	}
}

func TestInterleave16BitLittleEndian(t *testing.T) {
	out := make([]byte, 4)
	if err := Interleave([][]int32{{0x1234, 0x0FFE}}, 16, false, out); err != nil {
		t.Fatalf("Interleave failed: %v", err)
	}
	want := []byte{0x34, 0x12, 0xFE, 0x0F}
	if !bytes.Equal(out, want) {
		t.Errorf("Interleave = %v, want %v", out, want)
	}
}

func TestInterleaveMasksToDeclaredPrecision(t *testing.T) {
	// A 12-bit unsigned sample that the engine left out of range must be
	// masked, never passed through.
	out := make([]byte, 2)
	if err := Interleave([][]int32{{0x5FFF}}, 12, false, out); err != nil {
		t.Fatalf("Interleave failed: %v", err)
	}
	want := []byte{0xFF, 0x0F}
	if !bytes.Equal(out, want) {
		t.Errorf("Interleave = %v, want %v", out, want)
	}
}

func TestInterleaveSignExtendsSigned(t *testing.T) {
	// -1 at 12-bit signed must fill the 16-bit container: 0xFFFF.
	out := make([]byte, 2)
	if err := Interleave([][]int32{{-1}}, 12, true, out); err != nil {
		t.Fatalf("Interleave failed: %v", err)
	}
	want := []byte{0xFF, 0xFF}
	if !bytes.Equal(out, want) {
		t.Errorf("Interleave = %v, want %v", out, want)
	}

	// 24-bit signed minimum -2^23 in a 4-byte container.
	out4 := make([]byte, 4)
	if err := Interleave([][]int32{{-(1 << 23)}}, 24, true, out4); err != nil {
		t.Fatalf("Interleave failed: %v", err)
	}
	want4 := []byte{0x00, 0x00, 0x80, 0xFF}
	if !bytes.Equal(out4, want4) {
		t.Errorf("Interleave = %v, want %v", out4, want4)
	}
}

func TestInterleaveLengthMismatch(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5} {
		err := Interleave([][]int32{{1, 2}}, 8, false, make([]byte, n))
		if !errors.Is(err, ErrLengthMismatch) {
			t.Errorf("len %d: err = %v, want ErrLengthMismatch", n, err)
		}
	}
}

func TestDeinterleaveRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		prec   int
		signed bool
		comps  [][]int32
	}{
		{"8-bit unsigned RGB", 8, false, [][]int32{{0, 255}, {10, 20}, {30, 40}}},
		{"8-bit signed", 8, true, [][]int32{{-128, 127}}},
		{"12-bit signed", 12, true, [][]int32{{-2048, 2047}}},
		{"16-bit unsigned", 16, false, [][]int32{{0, 65535}}},
		{"24-bit unsigned", 24, false, [][]int32{{0, 1<<24 - 1}}},
		{"24-bit signed", 24, true, [][]int32{{-(1 << 23), 1<<23 - 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spp := len(tt.comps)
			n := len(tt.comps[0])
			bps := BytesPerSample(tt.prec)
			buf := make([]byte, n*spp*bps)
			if err := Interleave(tt.comps, tt.prec, tt.signed, buf); err != nil {
				t.Fatalf("Interleave failed: %v", err)
			}
			got, err := Deinterleave(buf, 1, n, spp, bps, tt.signed)
			if err != nil {
				t.Fatalf("Deinterleave failed: %v", err)
			}
			for c := range tt.comps {
				for i := range tt.comps[c] {
					if got[c][i] != tt.comps[c][i] {
						t.Errorf("component %d sample %d = %d, want %d",
							c, i, got[c][i], tt.comps[c][i])
					}
				}
			}
		})
	}
}

func TestDeinterleaveLengthMismatch(t *testing.T) {
	// 2x2, 1 component, 2 bytes/sample wants exactly 8 bytes.
	for _, n := range []int{0, 7, 9, 16} {
		_, err := Deinterleave(make([]byte, n), 2, 2, 1, 2, false)
		if !errors.Is(err, ErrLengthMismatch) {
			t.Errorf("len %d: err = %v, want ErrLengthMismatch", n, err)
		}
	}
}

func TestDeinterleaveSignExtension(t *testing.T) {
	// 0xFF as a signed 1-byte container is -1.
	comps, err := Deinterleave([]byte{0xFF}, 1, 1, 1, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if comps[0][0] != -1 {
		t.Errorf("signed byte 0xFF = %d, want -1", comps[0][0])
	}

	// Same byte unsigned is 255.
	comps, err = Deinterleave([]byte{0xFF}, 1, 1, 1, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if comps[0][0] != 255 {
		t.Errorf("unsigned byte 0xFF = %d, want 255", comps[0][0])
	}
}

func testImage(t *testing.T, w, h uint32, n, prec int) *imagedata.Image {
	t.Helper()
	img, err := imagedata.New(0, 0, w, h, n, prec, false, imagedata.ColorSpaceUnspecified)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestUnpackTileFullImage(t *testing.T) {
	img := testImage(t, 4, 2, 1, 8)
	tile := &engine.Tile{Index: 0, X0: 0, Y0: 0, X1: 4, Y1: 2, NumComps: 1}
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := UnpackTile(img, tile, data); err != nil {
		t.Fatalf("UnpackTile failed: %v", err)
	}
	want := []int32{1, 2, 3, 4, 5, 6, 7, 8}
	for i, v := range want {
		if img.Comps[0].Data[i] != v {
			t.Errorf("sample %d = %d, want %d", i, img.Comps[0].Data[i], v)
		}
	}
}

func TestUnpackTileOffsets(t *testing.T) {
	// Two 2x2 tiles side by side in a 4x2 image.
	img := testImage(t, 4, 2, 1, 8)
	left := &engine.Tile{Index: 0, X0: 0, Y0: 0, X1: 2, Y1: 2, NumComps: 1}
	right := &engine.Tile{Index: 1, X0: 2, Y0: 0, X1: 4, Y1: 2, NumComps: 1}

	if err := UnpackTile(img, left, []byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	if err := UnpackTile(img, right, []byte{5, 6, 7, 8}); err != nil {
		t.Fatal(err)
	}

	want := []int32{1, 2, 5, 6, 3, 4, 7, 8}
	for i, v := range want {
		if img.Comps[0].Data[i] != v {
			t.Errorf("sample %d = %d, want %d", i, img.Comps[0].Data[i], v)
		}
	}
}

func TestUnpackTileSubsampledComponent(t *testing.T) {
	// 4x2 luma with a 2x1 chroma plane (dx=dy=2).
	img := testImage(t, 4, 2, 1, 8)
	img.Comps = append(img.Comps, imagedata.Component{
		DX: 2, DY: 2, Prec: 8, W: 2, H: 1, Data: make([]int32, 2),
	})
	tile := &engine.Tile{Index: 0, X0: 0, Y0: 0, X1: 4, Y1: 2, NumComps: 2}
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if err := UnpackTile(img, tile, data); err != nil {
		t.Fatalf("UnpackTile failed: %v", err)
	}
	if img.Comps[1].Data[0] != 9 || img.Comps[1].Data[1] != 10 {
		t.Errorf("chroma plane = %v, want [9 10]", img.Comps[1].Data)
	}
}

func TestUnpackTileTruncatedPayload(t *testing.T) {
	img := testImage(t, 4, 2, 1, 8)
	tile := &engine.Tile{Index: 0, X0: 0, Y0: 0, X1: 4, Y1: 2, NumComps: 1}
	if err := UnpackTile(img, tile, []byte{1, 2, 3}); err == nil {
		t.Error("UnpackTile with short payload should fail")
	}
}

func TestUnpackTileOutsidePlane(t *testing.T) {
	img := testImage(t, 4, 2, 1, 8)
	tile := &engine.Tile{Index: 0, X0: 2, Y0: 0, X1: 6, Y1: 2, NumComps: 1}
	if err := UnpackTile(img, tile, make([]byte, 8)); err == nil {
		t.Error("UnpackTile outside the plane should fail")
	}
}

func TestPackPlaneRoundTrip(t *testing.T) {
	img := testImage(t, 2, 2, 1, 16)
	src := []int32{0, 1, 32767, 65535}
	out := make([]byte, 8)
	if err := PackPlane(src, 2, out); err != nil {
		t.Fatal(err)
	}
	tile := &engine.Tile{Index: 0, X0: 0, Y0: 0, X1: 2, Y1: 2, NumComps: 1}
	if err := UnpackTile(img, tile, out); err != nil {
		t.Fatal(err)
	}
	for i, v := range src {
		if img.Comps[0].Data[i] != v {
			t.Errorf("sample %d = %d, want %d", i, img.Comps[0].Data[i], v)
		}
	}
}

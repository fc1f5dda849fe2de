package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/fitglue/musclemap/pkg/domain/aggregate"
	"github.com/fitglue/musclemap/pkg/domain/geometry"
	"github.com/fitglue/musclemap/pkg/domain/intensity"
)

const squares = `{"Front": {
  "FrontChestRight": [{"path": "M 0,0 L 100,0 L 100,100 L 0,100 Z", "transform": {"translateX": 0, "translateY": 0}, "style": ""}],
  "BackLatsLeft": [{"path": "M 200,0 L 300,0 L 300,100 L 200,100 Z", "transform": {"translateX": 0, "translateY": 0}, "style": ""}],
  "FrontAbsLeft": [{"path": "M 1,1 L 2,2", "transform": {"translateX": 0, "translateY": 0}, "style": ""}]
}}`

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	return img
}

func rgb(c color.Color) (uint8, uint8, uint8) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.R, n.G, n.B
}

func TestHeatMap(t *testing.T) {
	geo, err := geometry.Parse([]byte(squares))
	if err != nil {
		t.Fatal(err)
	}
	v := aggregate.Empty()
	v["front-chest-right"] = aggregate.Volume{Primary: 30}

	// 300 wide plus 5% padding per side at one pixel per unit
	data, err := HeatMap(geo, intensity.Normalize(v), intensity.Standard, HeatMapOptions{Width: 330})
	if err != nil {
		t.Fatalf("HeatMap failed: %v", err)
	}
	img := decode(t, data)

	if b := img.Bounds(); b.Dx() != 330 || b.Dy() != 130 {
		t.Fatalf("expected 330x130, got %v", b)
	}
	// Square centers land at (65,65) and (265,65)
	if r, g, b := rgb(img.At(65, 65)); r != 255 || g != 0 || b != 0 {
		t.Errorf("expected red primary fill, got %d,%d,%d", r, g, b)
	}
	if r, g, b := rgb(img.At(265, 65)); r != 211 || g != 211 || b != 211 {
		t.Errorf("expected grey inactive fill, got %d,%d,%d", r, g, b)
	}
	// Outline on the inactive square's left edge
	if r, _, _ := rgb(img.At(215, 65)); r > 180 {
		t.Errorf("expected darkened outline, got red=%d", r)
	}
	// Background
	if r, g, b := rgb(img.At(2, 2)); r != 255 || g != 255 || b != 255 {
		t.Errorf("expected white background, got %d,%d,%d", r, g, b)
	}
}

func TestHeatMap_ColorBlind(t *testing.T) {
	geo, _ := geometry.Parse([]byte(squares))
	v := aggregate.Empty()
	v["front-chest-right"] = aggregate.Volume{Primary: 30}

	data, err := HeatMap(geo, intensity.Normalize(v), intensity.ColorBlind, HeatMapOptions{Width: 330})
	if err != nil {
		t.Fatalf("HeatMap failed: %v", err)
	}
	if r, g, b := rgb(decode(t, data).At(65, 65)); r != 0 || g != 114 || b != 178 {
		t.Errorf("expected dark blue primary fill, got %d,%d,%d", r, g, b)
	}
}

func TestHeatMap_NoData(t *testing.T) {
	geo, _ := geometry.Parse([]byte(squares))
	in := intensity.Normalize(aggregate.Empty())

	plain, err := HeatMap(geo, in, intensity.Standard, HeatMapOptions{Width: 330})
	if err != nil {
		t.Fatalf("HeatMap failed: %v", err)
	}
	captioned, err := HeatMap(geo, in, intensity.Standard, HeatMapOptions{Width: 330, Caption: CaptionNoData})
	if err != nil {
		t.Fatalf("HeatMap with caption failed: %v", err)
	}
	if bytes.Equal(plain, captioned) {
		t.Error("expected the caption to change the image")
	}
	if r, g, b := rgb(decode(t, plain).At(65, 65)); r != 211 || g != 211 || b != 211 {
		t.Errorf("expected all-inactive fill, got %d,%d,%d", r, g, b)
	}
}

func TestHeatMap_NoGeometry(t *testing.T) {
	geo, err := geometry.Parse([]byte(`{"Front": {}}`))
	if err != nil {
		t.Fatal(err)
	}
	data, err := HeatMap(geo, intensity.Intensities{}, intensity.Standard, HeatMapOptions{Caption: CaptionNoSource})
	if err != nil {
		t.Fatalf("HeatMap failed: %v", err)
	}
	if b := decode(t, data).Bounds(); b.Dx() != DefaultWidth || b.Dy() != DefaultWidth {
		t.Errorf("expected a square default canvas, got %v", b)
	}
}

func TestHeatMap_BundledGeometry(t *testing.T) {
	geo, err := geometry.Default()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := HeatMap(geo, intensity.Normalize(aggregate.Empty()), intensity.Standard, HeatMapOptions{}); err != nil {
		t.Fatalf("HeatMap failed on bundled geometry: %v", err)
	}
}

func TestDataURI(t *testing.T) {
	uri := DataURI([]byte{0x89, 'P', 'N', 'G'})
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %q", uri)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	if err != nil || string(raw[1:]) != "PNG" {
		t.Errorf("payload did not round-trip: %v", err)
	}
}

func TestLoadFace_Missing(t *testing.T) {
	if _, err := LoadFace("/nonexistent/font.ttf", 12); err == nil {
		t.Error("expected error for a missing font")
	}
}

package composite

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"testing"
)

// uniformScene serves constant-valued 2x2 channels, reporting Kelvin units
// for the emissive bands, matching multichannel imagery files.
type uniformScene map[int]float64

func (s uniformScene) Channel(band int) (*Grid, error) {
	v, ok := s[band]
	if !ok {
		return nil, fmt.Errorf("no channel %d", band)
	}
	g := NewGrid(2, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			g.Set(y, x, v)
		}
	}
	return g, nil
}

func (s uniformScene) ChannelUnits(band int) (string, error) {
	if _, ok := s[band]; !ok {
		return "", fmt.Errorf("no channel %d", band)
	}
	if band >= 7 {
		return "K", nil
	}
	return "1", nil
}

// checkUniform asserts every sample of a component equals want.
func checkUniform(t *testing.T, name string, g *Grid, want float64) {
	t.Helper()
	h, w := g.Dims()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if got := g.At(y, x); math.Abs(got-want) > 1e-9 {
				t.Errorf("%s At(%d,%d) = %v, want %v", name, y, x, got, want)
				return
			}
		}
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 19 {
		t.Errorf("Names() returned %d recipes, want 19", len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Error("Names() is not sorted")
	}
	found := false
	for _, n := range names {
		if n == "TrueColor" {
			found = true
		}
	}
	if !found {
		t.Error("Names() does not include TrueColor")
	}
}

func TestProduce_UnknownRecipe(t *testing.T) {
	_, err := Produce("Plasma", uniformScene{})
	if err == nil || !strings.Contains(err.Error(), "unknown composite") {
		t.Errorf("Produce(Plasma) error = %v, want unknown composite", err)
	}
}

func TestProduce_CaseInsensitive(t *testing.T) {
	scene := uniformScene{15: 260, 13: 262}
	im, err := Produce("splitwindowdifference", scene)
	if err != nil {
		t.Fatalf("Produce() error = %v", err)
	}
	if im.Name != "Split Window Difference" {
		t.Errorf("Name = %q, want %q", im.Name, "Split Window Difference")
	}
}

func TestProduce_MissingChannel(t *testing.T) {
	_, err := Produce("AirMass", uniformScene{8: 230})
	if err == nil || !strings.Contains(err.Error(), "building AirMass composite") {
		t.Errorf("Produce(AirMass) error = %v, want building AirMass composite", err)
	}
}

func TestTrueColor(t *testing.T) {
	scene := uniformScene{1: 0.3, 2: 0.5, 3: 0.2, 13: 200}

	exp := 1 / 2.2
	r := math.Pow(0.5, exp)
	veggie := math.Pow(0.2, exp)
	b := math.Pow(0.3, exp)
	green := 0.45*r + 0.1*veggie + 0.45*b
	ir := (1 - 110.0/223.0) / 1.4

	t.Run("defaults", func(t *testing.T) {
		im, err := Produce("TrueColor", scene)
		if err != nil {
			t.Fatalf("Produce() error = %v", err)
		}
		if im.Name != "True Color" {
			t.Errorf("Name = %q, want %q", im.Name, "True Color")
		}
		checkUniform(t, "R", im.R, math.Max(r, ir))
		checkUniform(t, "G", im.G, math.Max(green, ir))
		checkUniform(t, "B", im.B, math.Max(b, ir))
	})

	t.Run("veggie green kept", func(t *testing.T) {
		im, err := Produce("TrueColor", scene, WithPseudoGreen(false))
		if err != nil {
			t.Fatalf("Produce() error = %v", err)
		}
		checkUniform(t, "G", im.G, math.Max(veggie, ir))
	})

	t.Run("no IR overlay", func(t *testing.T) {
		im, err := Produce("TrueColor", scene, WithNightIR(false))
		if err != nil {
			t.Fatalf("Produce() error = %v", err)
		}
		checkUniform(t, "R", im.R, r)
		checkUniform(t, "B", im.B, b)
	})

	t.Run("unit gamma", func(t *testing.T) {
		im, err := Produce("TrueColor", scene, WithGamma(1), WithNightIR(false), WithPseudoGreen(false))
		if err != nil {
			t.Fatalf("Produce() error = %v", err)
		}
		checkUniform(t, "R", im.R, 0.5)
		checkUniform(t, "G", im.G, 0.2)
		checkUniform(t, "B", im.B, 0.3)
	})
}

func TestNaturalColor(t *testing.T) {
	t.Run("breakpoint stretch above the knee", func(t *testing.T) {
		// Albedo 0.09 puts the 0-255 brightness at 76.5, on the gentle
		// segment of the stretch.
		scene := uniformScene{1: 0.09, 2: 0.09, 3: 0.09}
		im, err := Produce("NaturalColor", scene)
		if err != nil {
			t.Fatalf("Produce() error = %v", err)
		}
		want := math.Pow(66.5/245.0, 1/0.8)
		checkUniform(t, "R", im.R, want)
		checkUniform(t, "G", im.G, want)
		checkUniform(t, "B", im.B, want)
	})

	t.Run("brightness below the knee clips dark", func(t *testing.T) {
		scene := uniformScene{1: 0.0009, 2: 0.0009, 3: 0.0009}
		im, err := Produce("NaturalColor", scene)
		if err != nil {
			t.Fatalf("Produce() error = %v", err)
		}
		checkUniform(t, "R", im.R, 0)
	})
}

func TestFireTemperature(t *testing.T) {
	scene := uniformScene{5: 0.3, 6: 0.5, 7: 600}
	im, err := Produce("FireTemperature", scene)
	if err != nil {
		t.Fatalf("Produce() error = %v", err)
	}
	checkUniform(t, "R", im.R, math.Pow((600-273.15-273)/60.0, 1/0.4))
	checkUniform(t, "G", im.G, 0.5)
	checkUniform(t, "B", im.B, 0.3/0.75)
}

func TestAirMass(t *testing.T) {
	scene := uniformScene{8: 230, 10: 250, 12: 240, 13: 245}
	im, err := Produce("AirMass", scene)
	if err != nil {
		t.Fatalf("Produce() error = %v", err)
	}
	checkUniform(t, "R", im.R, (-20.0+26.2)/26.8)
	checkUniform(t, "G", im.G, (-5.0+42.2)/48.9)
	checkUniform(t, "B", im.B, 1-(230-273.15+64.65)/35.4)
}

func TestDayCloudPhase(t *testing.T) {
	scene := uniformScene{2: 0.39, 5: 0.3, 13: 250}
	im, err := Produce("DayCloudPhase", scene)
	if err != nil {
		t.Fatalf("Produce() error = %v", err)
	}
	checkUniform(t, "R", im.R, 1-(250-273.15+53.5)/61.0)
	checkUniform(t, "G", im.G, 0.5)
	checkUniform(t, "B", im.B, 0.5)
}

func TestDaySnowFog(t *testing.T) {
	// Values chosen so all three components sit at 0.5 before the shared
	// gamma stretch.
	scene := uniformScene{3: 0.5, 5: 0.35, 7: 280, 13: 265}
	im, err := Produce("DaySnowFog", scene)
	if err != nil {
		t.Fatalf("Produce() error = %v", err)
	}
	want := math.Pow(0.5, 1/1.7)
	checkUniform(t, "R", im.R, want)
	checkUniform(t, "G", im.G, want)
	checkUniform(t, "B", im.B, want)
}

func TestSplitWindowDifference(t *testing.T) {
	scene := uniformScene{15: 260, 13: 262}
	im, err := Produce("SplitWindowDifference", scene)
	if err != nil {
		t.Fatalf("Produce() error = %v", err)
	}
	checkUniform(t, "R", im.R, 0.4)
	checkUniform(t, "G", im.G, 0.4)
	checkUniform(t, "B", im.B, 0.4)

	// Greyscale components are independent copies.
	im.R.Set(0, 0, 9)
	if got := im.G.At(0, 0); got != 0.4 {
		t.Errorf("G shares storage with R: At(0,0) = %v, want 0.4", got)
	}
}

func TestNightFogDifference(t *testing.T) {
	scene := uniformScene{13: 250, 7: 260}
	im, err := Produce("NightFogDifference", scene)
	if err != nil {
		t.Fatalf("Produce() error = %v", err)
	}
	checkUniform(t, "R", im.R, 1-80.0/105.0)
}

func TestRocketPlume(t *testing.T) {
	scene := uniformScene{7: 300, 8: 240, 2: 0.4, 5: 0.6}

	t.Run("day", func(t *testing.T) {
		im, err := Produce("RocketPlume", scene)
		if err != nil {
			t.Fatalf("Produce() error = %v", err)
		}
		checkUniform(t, "R", im.R, 27.0/65.0)
		checkUniform(t, "G", im.G, 0.35)
		checkUniform(t, "B", im.B, 0.5)
	})

	t.Run("night swaps the blue band", func(t *testing.T) {
		im, err := Produce("RocketPlume", scene, WithNight(true))
		if err != nil {
			t.Fatalf("Produce() error = %v", err)
		}
		checkUniform(t, "B", im.B, 0.75)
	})
}

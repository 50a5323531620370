package composite

import (
	"fmt"
	"sort"
	"strings"
)

// ChannelReader supplies the per-band grids recipes consume. Channel
// returns imagery values for one spectral band: reflectance factor for the
// visible and near-IR bands (1-6), brightness temperature in Kelvin for the
// IR bands (7-16). ChannelUnits reports the band's units attribute, "K"
// for the IR bands.
type ChannelReader interface {
	Channel(band int) (*Grid, error)
	ChannelUnits(band int) (string, error)
}

// Option adjusts a recipe away from its published defaults.
type Option func(*settings)

type settings struct {
	gamma          float64
	hasGamma       bool
	pseudoGreen    bool
	hasPseudoGreen bool
	nightIR        bool
	hasNightIR     bool
	night          bool
}

// WithGamma overrides the recipe's gamma correction. Values above 1
// lighten the image, below 1 darken it.
func WithGamma(gamma float64) Option {
	return func(s *settings) { s.gamma, s.hasGamma = gamma, true }
}

// WithPseudoGreen toggles the derived "true" green channel; off keeps the
// instrument's veggie band. Applies to TrueColor and NaturalColor.
func WithPseudoGreen(on bool) Option {
	return func(s *settings) { s.pseudoGreen, s.hasPseudoGreen = on, true }
}

// WithNightIR toggles the clean-IR overlay that keeps cold clouds visible
// on the night side. Applies to TrueColor and NaturalColor.
func WithNightIR(on bool) Option {
	return func(s *settings) { s.nightIR, s.hasNightIR = on, true }
}

// WithNight switches RocketPlume to its nighttime blue channel.
func WithNight(on bool) Option {
	return func(s *settings) { s.night = on }
}

type recipe struct {
	title string
	build func(c *composer) (*Image, error)
}

var recipes = map[string]recipe{
	"TrueColor":              {"True Color", (*composer).trueColor},
	"NaturalColor":           {"Natural Color", (*composer).naturalColor},
	"FireTemperature":        {"Fire Temperature", (*composer).fireTemperature},
	"AirMass":                {"Air Mass", (*composer).airMass},
	"DayCloudPhase":          {"Day Cloud Phase", (*composer).dayCloudPhase},
	"DayConvection":          {"Day Convection", (*composer).dayConvection},
	"DayCloudConvection":     {"Day Cloud Convection", (*composer).dayCloudConvection},
	"DayLandCloud":           {"Day Land Cloud", (*composer).dayLandCloud},
	"DayLandCloudFire":       {"Day Land Cloud Fire", (*composer).dayLandCloudFire},
	"WaterVapor":             {"Water Vapor", (*composer).waterVapor},
	"DifferentialWaterVapor": {"Differential Water Vapor", (*composer).differentialWaterVapor},
	"DaySnowFog":             {"Day Snow Fog", (*composer).daySnowFog},
	"NighttimeMicrophysics":  {"Nighttime Microphysics", (*composer).nighttimeMicrophysics},
	"Dust":                   {"Dust", (*composer).dust},
	"SulfurDioxide":          {"Sulfur Dioxide", (*composer).sulfurDioxide},
	"Ash":                    {"Ash", (*composer).ash},
	"SplitWindowDifference":  {"Split Window Difference", (*composer).splitWindowDifference},
	"NightFogDifference":     {"Night Fog Difference", (*composer).nightFogDifference},
	"RocketPlume":            {"Rocket Plume", (*composer).rocketPlume},
}

// Names returns the available recipe names, sorted.
func Names() []string {
	names := make([]string, 0, len(recipes))
	for name := range recipes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Produce runs the named recipe against src. Name matching is
// case-insensitive.
func Produce(name string, src ChannelReader, opts ...Option) (*Image, error) {
	r, ok := recipes[name]
	if !ok {
		for key, candidate := range recipes {
			if strings.EqualFold(key, name) {
				r, ok = candidate, true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("unknown composite %q: want one of %s", name, strings.Join(Names(), ", "))
	}

	c := &composer{src: src}
	for _, opt := range opts {
		opt(&c.set)
	}
	im, err := r.build(c)
	if err != nil {
		return nil, fmt.Errorf("building %s composite: %w", name, err)
	}
	im.Name = r.title
	return im, nil
}

// composer carries one recipe run's source and settings.
type composer struct {
	src ChannelReader
	set settings
}

// celsius loads a band, converting Kelvin bands to Celsius; reflectance
// bands pass through untouched.
func (c *composer) celsius(band int) (*Grid, error) {
	g, err := c.src.Channel(band)
	if err != nil {
		return nil, err
	}
	units, err := c.src.ChannelUnits(band)
	if err != nil {
		return nil, err
	}
	if units == "K" {
		g = g.AddScalar(-273.15)
	}
	return g, nil
}

// raw loads a band without unit conversion.
func (c *composer) raw(band int) (*Grid, error) { return c.src.Channel(band) }

// diff loads two bands and returns their difference a - b.
func (c *composer) diff(a, b int) (*Grid, error) {
	ga, err := c.raw(a)
	if err != nil {
		return nil, err
	}
	gb, err := c.raw(b)
	if err != nil {
		return nil, err
	}
	return Sub(ga, gb)
}

func (c *composer) gammaOr(def float64) float64 {
	if c.set.hasGamma {
		return c.set.gamma
	}
	return def
}

func (c *composer) pseudoGreenOr(def bool) bool {
	if c.set.hasPseudoGreen {
		return c.set.pseudoGreen
	}
	return def
}

func (c *composer) nightIROr(def bool) bool {
	if c.set.hasNightIR {
		return c.set.nightIR
	}
	return def
}

// pseudoGreen derives the "true" green channel from the red, veggie and
// blue bands; the veggie band alone reads too green over vegetation.
func pseudoGreen(r, g, b *Grid) (*Grid, error) {
	rg, err := zip(r, g, func(x, y float64) float64 { return 0.45*x + 0.1*y })
	if err != nil {
		return nil, err
	}
	out, err := zip(rg, b, func(x, y float64) float64 { return x + 0.45*y })
	if err != nil {
		return nil, err
	}
	return out.Clip(0, 1), nil
}

// nightIR prepares the clean-IR overlay: cold clouds become bright,
// dimmed so they do not overpower the daytime image.
func (c *composer) nightIR() (*Grid, error) {
	ir, err := c.raw(13)
	if err != nil {
		return nil, err
	}
	return ir.Normalize(90, 313).Invert().Scale(1 / 1.4), nil
}

// overlayIR max-combines the IR overlay into each component.
func overlayIR(r, g, b, ir *Grid) (rr, gg, bb *Grid, err error) {
	if rr, err = Max(r, ir); err != nil {
		return nil, nil, nil, err
	}
	if gg, err = Max(g, ir); err != nil {
		return nil, nil, nil, err
	}
	if bb, err = Max(b, ir); err != nil {
		return nil, nil, nil, err
	}
	return rr, gg, bb, nil
}

func (c *composer) trueColor() (*Image, error) {
	r, err := c.celsius(2)
	if err != nil {
		return nil, err
	}
	g, err := c.celsius(3)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(1)
	if err != nil {
		return nil, err
	}

	gamma := c.gammaOr(2.2)
	r = r.Clip(0, 1).Gamma(gamma)
	g = g.Clip(0, 1).Gamma(gamma)
	b = b.Clip(0, 1).Gamma(gamma)

	if c.pseudoGreenOr(true) {
		if g, err = pseudoGreen(r, g, b); err != nil {
			return nil, err
		}
	}
	if c.nightIROr(true) {
		ir, err := c.nightIR()
		if err != nil {
			return nil, err
		}
		if r, g, b, err = overlayIR(r, g, b, ir); err != nil {
			return nil, err
		}
	}
	return &Image{R: r, G: g, B: b}, nil
}

// breakpointStretch combines a steep low-end stretch with a gentle
// high-end stretch, taking whichever is lower.
func breakpointStretch(g *Grid) (*Grid, error) {
	return Min(g.Normalize(0, 10), g.Normalize(10, 255))
}

func (c *composer) naturalColor() (*Image, error) {
	r, err := c.celsius(2)
	if err != nil {
		return nil, err
	}
	g, err := c.celsius(3)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(1)
	if err != nil {
		return nil, err
	}

	r = r.Clip(0, 1)
	g = g.Clip(0, 1)
	b = b.Clip(0, 1)

	if c.pseudoGreenOr(true) {
		if g, err = pseudoGreen(r, g, b); err != nil {
			return nil, err
		}
	}

	// Albedo to brightness on a 0-255 scale, then the breakpoint stretch.
	toBrightness := func(g *Grid) *Grid { return g.Scale(100).Sqrt().Scale(25.5) }
	if r, err = breakpointStretch(toBrightness(r)); err != nil {
		return nil, err
	}
	if g, err = breakpointStretch(toBrightness(g)); err != nil {
		return nil, err
	}
	if b, err = breakpointStretch(toBrightness(b)); err != nil {
		return nil, err
	}

	if c.nightIROr(false) {
		ir, err := c.nightIR()
		if err != nil {
			return nil, err
		}
		if r, g, b, err = overlayIR(r, g, b, ir); err != nil {
			return nil, err
		}
	}

	gamma := c.gammaOr(0.8)
	return &Image{R: r.Gamma(gamma), G: g.Gamma(gamma), B: b.Gamma(gamma)}, nil
}

func (c *composer) fireTemperature() (*Image, error) {
	r, err := c.celsius(7)
	if err != nil {
		return nil, err
	}
	g, err := c.celsius(6)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(5)
	if err != nil {
		return nil, err
	}
	return &Image{
		R: r.Normalize(273, 333).Gamma(0.4),
		G: g.Normalize(0, 1),
		B: b.Normalize(0, 0.75),
	}, nil
}

func (c *composer) airMass() (*Image, error) {
	r, err := c.diff(8, 10)
	if err != nil {
		return nil, err
	}
	g, err := c.diff(12, 13)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(8)
	if err != nil {
		return nil, err
	}
	return &Image{
		R: r.Normalize(-26.2, 0.6),
		G: g.Normalize(-42.2, 6.7),
		B: b.Normalize(-64.65, -29.25).Invert(),
	}, nil
}

func (c *composer) dayCloudPhase() (*Image, error) {
	r, err := c.celsius(13)
	if err != nil {
		return nil, err
	}
	g, err := c.celsius(2)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(5)
	if err != nil {
		return nil, err
	}
	return &Image{
		R: r.Normalize(-53.5, 7.5).Invert(),
		G: g.Normalize(0, 0.78),
		B: b.Normalize(0.01, 0.59),
	}, nil
}

func (c *composer) dayConvection() (*Image, error) {
	r, err := c.diff(8, 10)
	if err != nil {
		return nil, err
	}
	g, err := c.diff(7, 13)
	if err != nil {
		return nil, err
	}
	b, err := c.diff(5, 2)
	if err != nil {
		return nil, err
	}
	return &Image{
		R: r.Normalize(-35, 5),
		G: g.Normalize(-5, 60),
		B: b.Normalize(-0.75, 0.25),
	}, nil
}

func (c *composer) dayCloudConvection() (*Image, error) {
	r, err := c.celsius(2)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(13)
	if err != nil {
		return nil, err
	}
	r = r.Normalize(0, 1).Gamma(1.7)
	return &Image{
		R: r,
		G: r.Clone(),
		B: b.Normalize(-70.15, 49.85).Invert(),
	}, nil
}

func (c *composer) dayLandCloud() (*Image, error) {
	r, err := c.celsius(5)
	if err != nil {
		return nil, err
	}
	g, err := c.celsius(3)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(2)
	if err != nil {
		return nil, err
	}
	return &Image{
		R: r.Normalize(0, 0.975),
		G: g.Normalize(0, 1.086),
		B: b.Normalize(0, 1),
	}, nil
}

func (c *composer) dayLandCloudFire() (*Image, error) {
	r, err := c.celsius(6)
	if err != nil {
		return nil, err
	}
	g, err := c.celsius(3)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(2)
	if err != nil {
		return nil, err
	}
	return &Image{
		R: r.Normalize(0, 1),
		G: g.Normalize(0, 1),
		B: b.Normalize(0, 1),
	}, nil
}

func (c *composer) waterVapor() (*Image, error) {
	r, err := c.celsius(13)
	if err != nil {
		return nil, err
	}
	g, err := c.celsius(8)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(10)
	if err != nil {
		return nil, err
	}
	return &Image{
		R: r.Normalize(-70.86, 5.81).Invert(),
		G: g.Normalize(-58.49, -30.48).Invert(),
		B: b.Normalize(-28.03, -12.12).Invert(),
	}, nil
}

func (c *composer) differentialWaterVapor() (*Image, error) {
	r, err := c.diff(10, 8)
	if err != nil {
		return nil, err
	}
	g, err := c.celsius(10)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(8)
	if err != nil {
		return nil, err
	}
	return &Image{
		R: r.Normalize(-3, 30).Gamma(0.2587).Invert(),
		G: g.Normalize(-60, 5).Gamma(0.4).Invert(),
		B: b.Normalize(-64.65, -29.25).Gamma(0.4).Invert(),
	}, nil
}

func (c *composer) daySnowFog() (*Image, error) {
	r, err := c.raw(3)
	if err != nil {
		return nil, err
	}
	g, err := c.raw(5)
	if err != nil {
		return nil, err
	}
	b, err := c.diff(7, 13)
	if err != nil {
		return nil, err
	}
	const gamma = 1.7
	return &Image{
		R: r.Normalize(0, 1).Gamma(gamma),
		G: g.Normalize(0, 0.7).Gamma(gamma),
		B: b.Normalize(0, 30).Gamma(gamma),
	}, nil
}

func (c *composer) nighttimeMicrophysics() (*Image, error) {
	r, err := c.diff(15, 13)
	if err != nil {
		return nil, err
	}
	g, err := c.diff(13, 7)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(13)
	if err != nil {
		return nil, err
	}
	return &Image{
		R: r.Normalize(-6.7, 2.6),
		G: g.Normalize(-3.1, 5.2),
		B: b.Normalize(-29.6, 19.5),
	}, nil
}

func (c *composer) dust() (*Image, error) {
	r, err := c.diff(15, 13)
	if err != nil {
		return nil, err
	}
	g, err := c.diff(14, 11)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(13)
	if err != nil {
		return nil, err
	}
	return &Image{
		R: r.Normalize(-6.7, 2.6),
		G: g.Normalize(-0.5, 20).Gamma(2.5),
		B: b.Normalize(-11.95, 15.55),
	}, nil
}

func (c *composer) sulfurDioxide() (*Image, error) {
	r, err := c.diff(9, 10)
	if err != nil {
		return nil, err
	}
	g, err := c.diff(13, 11)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(7)
	if err != nil {
		return nil, err
	}
	return &Image{
		R: r.Normalize(-4, 2),
		G: g.Normalize(-4, 5),
		B: b.Normalize(-30.1, 29.8),
	}, nil
}

func (c *composer) ash() (*Image, error) {
	r, err := c.diff(15, 13)
	if err != nil {
		return nil, err
	}
	g, err := c.diff(14, 11)
	if err != nil {
		return nil, err
	}
	b, err := c.celsius(13)
	if err != nil {
		return nil, err
	}
	return &Image{
		R: r.Normalize(-6.7, 2.6),
		G: g.Normalize(-6, 6.3),
		B: b.Normalize(-29.55, 29.25),
	}, nil
}

func (c *composer) splitWindowDifference() (*Image, error) {
	d, err := c.diff(15, 13)
	if err != nil {
		return nil, err
	}
	grey := d.Normalize(-10, 10)
	return &Image{R: grey, G: grey.Clone(), B: grey.Clone()}, nil
}

func (c *composer) nightFogDifference() (*Image, error) {
	d, err := c.diff(13, 7)
	if err != nil {
		return nil, err
	}
	grey := d.Normalize(-90, 15).Invert()
	return &Image{R: grey, G: grey.Clone(), B: grey.Clone()}, nil
}

func (c *composer) rocketPlume() (*Image, error) {
	r, err := c.raw(7)
	if err != nil {
		return nil, err
	}
	g, err := c.raw(8)
	if err != nil {
		return nil, err
	}
	blueBand := 2
	if c.set.night {
		blueBand = 5
	}
	b, err := c.raw(blueBand)
	if err != nil {
		return nil, err
	}
	return &Image{
		R: r.Normalize(273, 338),
		G: g.Normalize(233, 253),
		B: b.Normalize(0, 0.80),
	}, nil
}

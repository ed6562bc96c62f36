package layout

import (
	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
)

// Default layout constants.
const (
	DefaultHorizontalSpacing = 400.0
	DefaultVerticalSpacing   = 200.0
	DefaultStartX            = 500.0
	DefaultStartY            = 100.0
	DefaultVennCenterX       = 500.0
	DefaultVennCenterY       = 300.0
	DefaultVennRadius        = 150.0
	DefaultVennSpacing       = 100.0
)

// Config holds the spacing and anchor values every strategy reads.
// It is passed explicitly so strategies stay pure.
type Config struct {
	HorizontalSpacing float64 `json:"horizontal_spacing" toml:"horizontal_spacing"`
	VerticalSpacing   float64 `json:"vertical_spacing" toml:"vertical_spacing"`
	StartX            float64 `json:"start_x" toml:"start_x"`
	StartY            float64 `json:"start_y" toml:"start_y"`
	VennCenterX       float64 `json:"venn_center_x" toml:"venn_center_x"`
	VennCenterY       float64 `json:"venn_center_y" toml:"venn_center_y"`
	VennRadius        float64 `json:"venn_radius" toml:"venn_radius"`
	VennSpacing       float64 `json:"venn_spacing" toml:"venn_spacing"`
}

// DefaultConfig returns the built-in layout configuration.
func DefaultConfig() Config {
	return Config{
		HorizontalSpacing: DefaultHorizontalSpacing,
		VerticalSpacing:   DefaultVerticalSpacing,
		StartX:            DefaultStartX,
		StartY:            DefaultStartY,
		VennCenterX:       DefaultVennCenterX,
		VennCenterY:       DefaultVennCenterY,
		VennRadius:        DefaultVennRadius,
		VennSpacing:       DefaultVennSpacing,
	}
}

// WithDefaults returns c with every zero spacing or radius replaced by its
// default. Anchors (StartX, StartY, Venn center) are kept as given, since
// zero is a meaningful anchor.
func (c Config) WithDefaults() Config {
	if c.HorizontalSpacing == 0 {
		c.HorizontalSpacing = DefaultHorizontalSpacing
	}
	if c.VerticalSpacing == 0 {
		c.VerticalSpacing = DefaultVerticalSpacing
	}
	if c.VennRadius == 0 {
		c.VennRadius = DefaultVennRadius
	}
	if c.VennSpacing == 0 {
		c.VennSpacing = DefaultVennSpacing
	}
	return c
}

// Validate rejects negative spacings and radii.
func (c Config) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"horizontal_spacing", c.HorizontalSpacing},
		{"vertical_spacing", c.VerticalSpacing},
		{"venn_radius", c.VennRadius},
		{"venn_spacing", c.VennSpacing},
	}
	for _, chk := range checks {
		if chk.value < 0 {
			return cferrors.New(cferrors.ErrCodeInvalidConfig, "%s must not be negative, got %g", chk.name, chk.value)
		}
	}
	return nil
}

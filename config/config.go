// Package config reads the thresholder's JSON5 configuration: camera
// geometry, pinhole intrinsics, default threshold bounds, and the tuning
// surface bind address.
package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	goutils "go.viam.com/utils"

	"github.com/slazery/kinect2-HSV-thresholder/camera"
	"github.com/slazery/kinect2-HSV-thresholder/threshold"
)

// Config is the top-level configuration.
type Config struct {
	Camera     camera.SyntheticConfig          `json:"camera"`
	Intrinsics *camera.PinholeCameraIntrinsics `json:"intrinsics,omitempty"`
	Thresholds *ThresholdConfig                `json:"thresholds,omitempty"`
	Web        WebConfig                       `json:"web"`
}

// ThresholdConfig holds the six startup bounds.
type ThresholdConfig struct {
	LowerHue        int `json:"lower_hue"`
	UpperHue        int `json:"upper_hue"`
	LowerSaturation int `json:"lower_saturation"`
	UpperSaturation int `json:"upper_saturation"`
	LowerValue      int `json:"lower_value"`
	UpperValue      int `json:"upper_value"`
}

// WebConfig configures the tuning surface.
type WebConfig struct {
	BindAddress string `json:"bind_address"`
}

// Default returns a runnable configuration for the synthetic camera.
func Default() *Config {
	cfg := &Config{
		Camera: camera.SyntheticConfig{Width: 640, Height: 480, FrameRate: 30},
		Web:    WebConfig{BindAddress: "localhost:8181"},
	}
	cfg.ensureDefaults()
	return cfg
}

func (c *Config) ensureDefaults() {
	if c.Web.BindAddress == "" {
		c.Web.BindAddress = "localhost:8181"
	}
	if c.Intrinsics == nil {
		// Centered pinhole with a ~60 degree horizontal field of view.
		c.Intrinsics = &camera.PinholeCameraIntrinsics{
			Width:  c.Camera.Width,
			Height: c.Camera.Height,
			Fx:     float64(c.Camera.Width) * 0.87,
			Fy:     float64(c.Camera.Width) * 0.87,
			Ppx:    float64(c.Camera.Width) / 2,
			Ppy:    float64(c.Camera.Height) / 2,
		}
	}
	if c.Thresholds == nil {
		r := threshold.DefaultRange()
		c.Thresholds = &ThresholdConfig{
			LowerHue:        int(r.LoH),
			UpperHue:        int(r.HiH),
			LowerSaturation: int(r.LoS),
			UpperSaturation: int(r.HiS),
			LowerValue:      int(r.LoV),
			UpperValue:      int(r.HiV),
		}
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if c.Camera.Width <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "camera.width")
	}
	if c.Camera.Height <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "camera.height")
	}
	if err := c.Intrinsics.CheckValid(); err != nil {
		return goutils.NewConfigValidationError(path+".intrinsics", err)
	}
	if c.Intrinsics.Width != c.Camera.Width || c.Intrinsics.Height != c.Camera.Height {
		return goutils.NewConfigValidationError(path+".intrinsics",
			errors.Errorf("intrinsics are %dx%d but camera is %dx%d",
				c.Intrinsics.Width, c.Intrinsics.Height, c.Camera.Width, c.Camera.Height))
	}
	if err := c.Thresholds.validate(path + ".thresholds"); err != nil {
		return err
	}
	return nil
}

func (t *ThresholdConfig) validate(path string) error {
	check := func(ch threshold.Channel, lo, hi int, name string) error {
		if lo < 0 || int32(hi) > ch.Max() {
			return goutils.NewConfigValidationError(path,
				errors.Errorf("%s bounds [%d,%d] outside [0,%d]", name, lo, hi, ch.Max()))
		}
		if lo > hi {
			return goutils.NewConfigValidationError(path,
				errors.Errorf("%s bounds inverted: %d > %d", name, lo, hi))
		}
		return nil
	}
	if err := check(threshold.Hue, t.LowerHue, t.UpperHue, "hue"); err != nil {
		return err
	}
	if err := check(threshold.Saturation, t.LowerSaturation, t.UpperSaturation, "saturation"); err != nil {
		return err
	}
	return check(threshold.Value, t.LowerValue, t.UpperValue, "value")
}

// Range converts the startup bounds to a threshold range.
func (t *ThresholdConfig) Range() threshold.Range {
	return threshold.Range{
		LoH: uint8(t.LowerHue),
		HiH: uint8(t.UpperHue),
		LoS: uint8(t.LowerSaturation),
		HiS: uint8(t.UpperSaturation),
		LoV: uint8(t.LowerValue),
		HiV: uint8(t.UpperValue),
	}
}

// Read loads, defaults, and validates a config file.
func Read(filePath string) (*Config, error) {
	//nolint:gosec
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening config file")
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	cfg := &Config{}
	if err := json5.NewDecoder(f).Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing config file")
	}
	cfg.ensureDefaults()
	if err := cfg.Validate(""); err != nil {
		return nil, errors.Wrap(err, "error validating config file")
	}
	return cfg, nil
}

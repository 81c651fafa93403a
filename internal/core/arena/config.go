package arena

import "fmt"

// Config is fixed at construction.
type Config struct {
	Width, Height  float64
	BaseSpeed      float64 // pursuer speed at round start, units per sample
	SpeedCap       float64 // ceiling for the difficulty ramp
	MaxManualSpeed float64 // ceiling for SetPursuitSpeed
	Deadband       float64 // pursuit arrival radius
	RampEveryTicks int     // clock ticks between ramp steps
	TrailLength    int     // pointer history kept for renderers; 0 disables
	Separation     SeparationParams
	Layout         []Placement
}

func DefaultConfig() Config {
	return Config{
		Width:          800,
		Height:         800,
		BaseSpeed:      1,
		SpeedCap:       10,
		MaxManualSpeed: 15,
		Deadband:       10,
		RampEveryTicks: 5,
		TrailLength:    20,
		Separation:     DefaultSeparationParams(),
		Layout:         DefaultLayout(),
	}
}

func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: arena size %.1fx%.1f", ErrInvalidConfig, c.Width, c.Height)
	case c.BaseSpeed <= 0:
		return fmt.Errorf("%w: base speed must be positive", ErrInvalidConfig)
	case c.SpeedCap < c.BaseSpeed:
		return fmt.Errorf("%w: speed cap %.1f below base speed %.1f", ErrInvalidConfig, c.SpeedCap, c.BaseSpeed)
	case c.MaxManualSpeed < c.BaseSpeed:
		return fmt.Errorf("%w: manual speed max %.1f below base speed %.1f", ErrInvalidConfig, c.MaxManualSpeed, c.BaseSpeed)
	case c.Deadband < 0:
		return fmt.Errorf("%w: negative deadband", ErrInvalidConfig)
	case c.RampEveryTicks < 0 || c.TrailLength < 0:
		return fmt.Errorf("%w: negative tick or trail setting", ErrInvalidConfig)
	case c.Separation.CoincidentEpsilon <= 0:
		return fmt.Errorf("%w: coincidence epsilon must be positive", ErrInvalidConfig)
	}
	return nil
}

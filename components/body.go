package components

import "github.com/pthm-cable/botarena/config"

// Chassis holds the physical capabilities of a car.
type Chassis struct {
	Radius       float64
	Height       float64
	MaxSpeed     float64
	Acceleration float64
	TurnSpeed    float64 // degrees per second at full turn input
	JumpForce    float64
	FirePoint    [3]float64 // local offset: right, up, forward
}

// ChassisFromConfig returns the chassis every car is built with.
func ChassisFromConfig(cfg *config.Config) Chassis {
	return Chassis{
		Radius:       cfg.Car.Radius,
		Height:       cfg.Car.Height,
		MaxSpeed:     cfg.Derived.MaxSpeed,
		Acceleration: cfg.Derived.Acceleration,
		TurnSpeed:    cfg.Derived.TurnSpeed,
		JumpForce:    cfg.Derived.JumpForce,
		FirePoint:    cfg.Car.FirePoint,
	}
}

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/config"
	"gopkg.in/yaml.v2"
)

func validVehicle() config.Vehicle {
	return config.Vehicle{
		Mass:               120,
		DragCoefficient:    0.22,
		FrontalArea:        0.8,
		RollingCoefficient: 0.02,
		MaxPower:           900,
		MaxForce:           92,
		MaxBrakeForce:      400,
		Efficiency:         0.78,
		Gravity:            9.81,
		AirDensity:         1.225,
	}
}

func TestRuntimeConfigDefaults(t *testing.T) {
	rc, err := config.NewRuntimeConfig(config.Config{Vehicle: validVehicle()})
	assert.Nil(t, err)

	// unit conversion km/h -> m/s
	assert.InDelta(t, 32/3.6, rc.MaxSpeed, 1e-9)
	assert.InDelta(t, 99/3.6, rc.SafeCornerSpeed, 1e-9)
	assert.InDelta(t, 24/3.6, rc.TargetSpeedMin, 1e-9)
	assert.InDelta(t, 27/3.6, rc.TargetSpeedMax, 1e-9)
	// time budget: the official limit is defined for a 4-lap attempt
	assert.Equal(t, 4, rc.Laps)
	assert.InDelta(t, 30*60, rc.AllowedTime, 1e-9)
	// behavioral knobs
	assert.Equal(t, 1.5, rc.LaunchSpeed)
	assert.Equal(t, 8, rc.CornerWindow)
	assert.Equal(t, 9.0, rc.CornerThresholdDeg)
	assert.True(t, rc.StopAfterFinish)
	// GA defaults
	assert.Equal(t, 36, rc.Population)
	assert.Equal(t, 40, rc.Generations)
	assert.Equal(t, 0.9, rc.CrossoverRate)
	assert.Equal(t, 0.12, rc.MutationRate)
	assert.Equal(t, 2, rc.Elite)
}

func TestRuntimeConfigAllowedTimeScalesWithLaps(t *testing.T) {
	c := config.Config{Vehicle: validVehicle()}
	c.Strategy.Laps = 2
	c.Strategy.LapTimeLimitMin = 20
	rc, err := config.NewRuntimeConfig(c)
	assert.Nil(t, err)
	assert.InDelta(t, 20*60/4*2, rc.AllowedTime, 1e-9)
}

func TestRuntimeConfigFailsFastOnMissingPhysics(t *testing.T) {
	v := validVehicle()
	v.Mass = 0 // missing key decodes to zero value
	_, err := config.NewRuntimeConfig(config.Config{Vehicle: v})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "vehicle.mass")

	v = validVehicle()
	v.Efficiency = 1.2
	_, err = config.NewRuntimeConfig(config.Config{Vehicle: v})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "efficiency")

	v = validVehicle()
	v.AirDensity = -1
	_, err = config.NewRuntimeConfig(config.Config{Vehicle: v})
	assert.NotNil(t, err)
}

func TestRuntimeConfigExplicitZeroGenerations(t *testing.T) {
	c := config.Config{Vehicle: validVehicle()}
	zero := 0
	c.GA.Generations = &zero
	rc, err := config.NewRuntimeConfig(c)
	assert.Nil(t, err)
	assert.Equal(t, 0, rc.Generations)
}

func TestRuntimeConfigStopsValidation(t *testing.T) {
	c := config.Config{Vehicle: validVehicle()}
	c.Strategy.Stops.Enabled = true
	_, err := config.NewRuntimeConfig(c)
	assert.NotNil(t, err)

	c.Strategy.Stops.Positions = []float64{150}
	rc, err := config.NewRuntimeConfig(c)
	assert.Nil(t, err)
	assert.Equal(t, 10.0, rc.Stops.Dwell)
}

func TestConfigYamlStrict(t *testing.T) {
	data := `
control:
  step: {start: 0, total: 1000, interval: 0.9}
  seed: 42
vehicle:
  mass: 120
  drag_coefficient: 0.22
  frontal_area: 0.8
  rolling_coefficient: 0.02
  max_power: 900
  max_force: 92
  max_brake_force: 400
  efficiency: 0.78
  gravity: 9.81
  air_density: 1.225
strategy:
  laps: 4
`
	var c config.Config
	assert.Nil(t, yaml.UnmarshalStrict([]byte(data), &c))
	rc, err := config.NewRuntimeConfig(c)
	assert.Nil(t, err)
	assert.Equal(t, uint64(42), rc.C.Seed)
	assert.Equal(t, int32(1000), rc.C.Step.Total)

	// unknown keys are rejected
	assert.NotNil(t, yaml.UnmarshalStrict([]byte("vehicle:\n  masss: 1\n"), &c))
}

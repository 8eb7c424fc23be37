package optimizer_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/track"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/optimizer"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/randengine"
)

const meterToDeg = 180 / (math.Pi * 6371000)

func squareLoop(side float64, perSide int) []track.Waypoint {
	wps := make([]track.Waypoint, 0, 4*perSide)
	corners := [][2]float64{{0, 0}, {side, 0}, {side, side}, {0, side}}
	for i := 0; i < 4; i++ {
		a, b := corners[i], corners[(i+1)%4]
		for j := 0; j < perSide; j++ {
			k := float64(j) / float64(perSide)
			wps = append(wps, track.Waypoint{
				Lat: (a[1] + (b[1]-a[1])*k) * meterToDeg,
				Lng: (a[0] + (b[0]-a[0])*k) * meterToDeg,
			})
		}
	}
	return wps
}

// newGAConfig 小规模演化配置：单直道赛道、小种群、少量代数、短评估时钟
func newGAConfig(t *testing.T, generations int) (*track.Track, *config.RuntimeConfig) {
	trk, err := track.New(squareLoop(100, 1), 8, 9)
	assert.Nil(t, err)

	c := config.Config{
		Vehicle: config.Vehicle{
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
		},
	}
	c.Strategy.Laps = 1
	c.GA.Population = 6
	c.GA.Generations = &generations
	rc, err := config.NewRuntimeConfig(c)
	assert.Nil(t, err)
	rc.GAStep = config.ControlStep{Total: 4000, Interval: 0.5}
	return trk, rc
}

func TestOptimizerRun(t *testing.T) {
	trk, rc := newGAConfig(t, 3)
	res, err := optimizer.New(trk, rc, randengine.New(7), nil).Run()
	assert.Nil(t, err)

	// 迄今最优代价轨迹每代记录一次且单调不增
	assert.Len(t, res.CostTrace, 3)
	for i := 1; i < len(res.CostTrace); i++ {
		assert.LessOrEqual(t, res.CostTrace[i], res.CostTrace[i-1])
	}
	assert.Equal(t, res.CostTrace[len(res.CostTrace)-1], res.Best.Cost)
	assert.InDelta(t, 1/(1+res.Best.Cost), res.Best.Fitness, 1e-12)
	assert.Greater(t, res.Best.EnergyWh, 0.0)
	assert.False(t, res.Best.Capped)

	// 最优策略与直道一一对应且落在合法区间内
	assert.Len(t, res.Policy, len(trk.Straights()))
	for _, entry := range res.Policy {
		assert.GreaterOrEqual(t, entry.Throttle, vehicle.ThrottleMin)
		assert.LessOrEqual(t, entry.Throttle, vehicle.ThrottleMax)
		assert.GreaterOrEqual(t, entry.Pulse, vehicle.PulseMin)
		assert.LessOrEqual(t, entry.Pulse, vehicle.PulseMax)
	}
}

func TestOptimizerDeterminism(t *testing.T) {
	trk, rc := newGAConfig(t, 2)
	res1, err := optimizer.New(trk, rc, randengine.New(42), nil).Run()
	assert.Nil(t, err)
	res2, err := optimizer.New(trk, rc, randengine.New(42), nil).Run()
	assert.Nil(t, err)
	assert.Equal(t, res1.CostTrace, res2.CostTrace)
	assert.Equal(t, res1.Policy, res2.Policy)
}

func TestOptimizerNoStraights(t *testing.T) {
	trk, err := track.New(squareLoop(100, 4), 1, -1)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(trk.Straights()))

	_, rc := newGAConfig(t, 2)
	_, err = optimizer.New(trk, rc, randengine.New(1), nil).Run()
	assert.ErrorIs(t, err, optimizer.ErrNoStraights)
}

func TestOptimizerZeroGenerations(t *testing.T) {
	trk, rc := newGAConfig(t, 2)
	rc.Generations = 0
	_, err := optimizer.New(trk, rc, randengine.New(1), nil).Run()
	assert.NotNil(t, err)
	assert.NotErrorIs(t, err, optimizer.ErrNoStraights)
}

func TestOptimizerProgressCallback(t *testing.T) {
	trk, rc := newGAConfig(t, 3)
	gens := []int{}
	progress := func(generation, total int, bestCost, bestEnergyWh, bestAvgSpeed float64) {
		assert.Equal(t, 3, total)
		assert.Greater(t, bestCost, 0.0)
		gens = append(gens, generation)
	}
	_, err := optimizer.New(trk, rc, randengine.New(7), progress).Run()
	assert.Nil(t, err)
	assert.Equal(t, []int{0, 1, 2}, gens)
}

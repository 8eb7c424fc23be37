package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/randengine"
)

func TestNewRandomVectorBounds(t *testing.T) {
	e := randengine.New(1)
	v := newRandomVector(3, e)
	assert.Len(t, v, 6)
	for i, g := range v {
		low, high := vehicle.GeneBounds(i)
		assert.GreaterOrEqual(t, g, low)
		assert.Less(t, g, high)
	}
}

func TestMutateRateZero(t *testing.T) {
	e := randengine.New(1)
	v := []float64{0.5, 0.5, 0.5, 0.5}
	mutate(v, 0, e)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, v)
}

func TestMutateRateOne(t *testing.T) {
	// 区间中部的基因在概率1下必然被扰动，且钳位后仍在合法区间内
	e := randengine.New(1)
	v := []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
	mutate(v, 1, e)
	for i, g := range v {
		assert.NotEqual(t, 0.5, g)
		low, high := vehicle.GeneBounds(i)
		assert.GreaterOrEqual(t, g, low)
		assert.LessOrEqual(t, g, high)
	}
}

func TestCrossover(t *testing.T) {
	e := randengine.New(1)
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{11, 12, 13, 14, 15, 16}
	c1, c2 := crossover(a, b, e)

	// 定位交叉点：两子代在同一内部点切换父本
	pt := 0
	for pt < len(a) && c1[pt] == a[pt] {
		pt++
	}
	assert.GreaterOrEqual(t, pt, 2)
	assert.LessOrEqual(t, pt, len(a)-2)
	assert.Equal(t, append(append([]float64{}, a[:pt]...), b[pt:]...), c1)
	assert.Equal(t, append(append([]float64{}, b[:pt]...), a[pt:]...), c2)
	// 父本不受影响
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, a)
	assert.Equal(t, []float64{11, 12, 13, 14, 15, 16}, b)
}

func TestCrossoverShortVector(t *testing.T) {
	// 长度不足4没有内部交叉点：父本原样传递，且为独立副本
	e := randengine.New(1)
	a := []float64{1, 2}
	b := []float64{3, 4}
	c1, c2 := crossover(a, b, e)
	assert.Equal(t, a, c1)
	assert.Equal(t, b, c2)
	c1[0] = 99
	c2[0] = 99
	assert.Equal(t, 1.0, a[0])
	assert.Equal(t, 3.0, b[0])
}

func TestTournament(t *testing.T) {
	e := randengine.New(1)
	weak := &Individual{Vector: []float64{0.3, 0.1}, Evaluation: Evaluation{Fitness: 0.1}}
	strong := &Individual{Vector: []float64{0.9, 0.9}, Evaluation: Evaluation{Fitness: 0.9}}
	pop := []*Individual{weak, strong}

	strongWins := 0
	for i := 0; i < 100; i++ {
		v := tournament(pop, e)
		assert.Contains(t, [][]float64{weak.Vector, strong.Vector}, v)
		if v[0] == 0.9 {
			strongWins++
		}
	}
	// 二元锦标赛中弱者仅在两次抽样均命中自身时获胜（期望1/4）
	assert.Greater(t, strongWins, 50)
}

package optimizer

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/randengine"
)

const (
	// mutationSigma 变异高斯噪声的标准差
	mutationSigma = 0.08
	// tournamentSize 锦标赛选择的参赛个体数
	tournamentSize = 2
	// minCrossoverLen 允许交叉的最短向量长度，交叉点需落在内部
	minCrossoverLen = 4
)

// Individual 个体
// 功能：优化器内部的候选解，基因向量与其评估结果
// 说明：向量长度为2k（k为直道数），油门与脉冲基因交替排列；
// 每代丢弃，仅精英与全局最优保留副本
type Individual struct {
	Vector     []float64  // 基因向量
	Evaluation Evaluation // 评估结果
}

// newRandomVector 随机初始化基因向量
// 功能：每个基因在其合法区间内均匀采样
func newRandomVector(k int, e *randengine.Engine) []float64 {
	v := make([]float64, 2*k)
	for i := range v {
		low, high := vehicle.GeneBounds(i)
		v[i] = e.Float64Range(low, high)
	}
	return v
}

// cloneVector 复制基因向量
func cloneVector(v []float64) []float64 {
	return append([]float64(nil), v...)
}

// tournament 二元锦标赛选择
// 功能：随机抽取两个个体，保留适应度较高者
// 参数：pop-已评估的种群，e-随机数引擎
// 返回：胜者的基因向量（引用，调用方负责复制）
func tournament(pop []*Individual, e *randengine.Engine) []float64 {
	best := pop[e.Intn(len(pop))]
	for i := 1; i < tournamentSize; i++ {
		rival := pop[e.Intn(len(pop))]
		if rival.Evaluation.Fitness > best.Evaluation.Fitness {
			best = rival
		}
	}
	return best.Vector
}

// crossover 单点交叉
// 功能：在随机内部交叉点交换两个父本的尾段，产生两个子代
// 算法说明：交叉点在[2, len-2]内等概率选取；长度不足4的向量
// 没有内部交叉点，父本原样传递
func crossover(a, b []float64, e *randengine.Engine) ([]float64, []float64) {
	if len(a) < minCrossoverLen {
		return cloneVector(a), cloneVector(b)
	}
	pt := 2 + e.Intn(len(a)-3)
	c1 := append(cloneVector(a[:pt]), b[pt:]...)
	c2 := append(cloneVector(b[:pt]), a[pt:]...)
	return c1, c2
}

// mutate 高斯变异
// 功能：按逐基因概率叠加高斯噪声并钳位回合法区间（就地修改）
// 参数：v-基因向量，rate-单基因变异概率，e-随机数引擎
// 说明：油门基因与脉冲基因使用相同的噪声尺度、不同的钳位边界
func mutate(v []float64, rate float64, e *randengine.Engine) {
	for i := range v {
		if !e.PTrue(rate) {
			continue
		}
		low, high := vehicle.GeneBounds(i)
		v[i] = lo.Clamp(v[i]+e.NormFloat64()*mutationSigma, low, high)
	}
}

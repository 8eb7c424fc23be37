package optimizer

import (
	"errors"
	"fmt"
	"sort"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/track"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/randengine"
)

// ErrNoStraights 赛道未检测出任何直道
// 说明：策略编码长度由直道数决定，零直道意味着零长度编码，
// 优化器必须在任何演化开始前中止
var ErrNoStraights = errors.New("no straights detected on track, nothing to optimize")

// ProgressFunc 每代进度回调
// 功能：优化器每代结束时调用一次，纯观测用途，无控制反馈
// 参数：generation-当前代序号（从0开始），total-总代数，
// bestCost-迄今最优代价，bestEnergyWh-对应能耗（瓦时），
// bestAvgSpeed-对应平均速度（米/秒）
type ProgressFunc func(generation, total int, bestCost, bestEnergyWh, bestAvgSpeed float64)

// Result 优化结果
type Result struct {
	Policy    vehicle.Policy // 最优策略
	Best      Evaluation     // 最优策略的评估结果
	CostTrace []float64      // 每代结束时的迄今最优代价
}

// Optimizer 遗传优化器
// 功能：以适应度评估器为目标函数演化策略向量种群
// 说明：全部随机性经由注入的随机数引擎，给定种子时结果可复现；
// 种群评估按个体并行，选择与繁殖串行
type Optimizer struct {
	track     *track.Track
	rcfg      *config.RuntimeConfig
	evaluator *Evaluator
	engine    *randengine.Engine
	progress  ProgressFunc
}

// New 创建遗传优化器
// 参数：trk-赛道，rcfg-运行时配置，engine-随机数引擎，
// progress-可选的每代进度回调（可为nil）
func New(
	trk *track.Track,
	rcfg *config.RuntimeConfig,
	engine *randengine.Engine,
	progress ProgressFunc,
) *Optimizer {
	return &Optimizer{
		track:     trk,
		rcfg:      rcfg,
		evaluator: NewEvaluator(trk, rcfg),
		engine:    engine,
		progress:  progress,
	}
}

// Run 执行优化
// 功能：演化配置的代数并返回最优策略
// 返回：优化结果；零直道赛道返回ErrNoStraights
// 算法说明：
// 1. 初始化：种群规模个个体，每个基因在合法区间内均匀采样
// 2. 每代：并行评估全部个体→按适应度降序排序→以最低代价为准
//    更新全局最优（代价而非适应度，避免适应度饱和失真）→
//    精英原样保留→锦标赛选择+单点交叉+逐基因高斯变异补齐种群
// 3. 固定代数后终止，报告最优策略与每代最优代价轨迹
func (o *Optimizer) Run() (*Result, error) {
	k := len(o.track.Straights())
	if k == 0 {
		return nil, ErrNoStraights
	}
	rc := o.rcfg
	if rc.Generations <= 0 {
		return nil, fmt.Errorf("optimizer requires at least 1 generation, got %d", rc.Generations)
	}
	log.Infof("GA start: %d straights, population %d, %d generations",
		k, rc.Population, rc.Generations)

	pop := make([]*Individual, rc.Population)
	for i := range pop {
		pop[i] = &Individual{Vector: newRandomVector(k, o.engine)}
	}

	var best *Individual
	trace := make([]float64, 0, rc.Generations)
	for gen := 0; gen < rc.Generations; gen++ {
		// 评估是(策略, 赛道, 配置)的纯函数，整代并行
		evals := parallel.GoMap(pop, func(ind *Individual) Evaluation {
			return o.evaluator.Evaluate(vehicle.PolicyFromVector(ind.Vector))
		})
		for i, ev := range evals {
			pop[i].Evaluation = ev
		}
		sort.Slice(pop, func(i, j int) bool {
			return pop[i].Evaluation.Fitness > pop[j].Evaluation.Fitness
		})
		if best == nil || pop[0].Evaluation.Cost < best.Evaluation.Cost {
			best = &Individual{
				Vector:     cloneVector(pop[0].Vector),
				Evaluation: pop[0].Evaluation,
			}
		}
		trace = append(trace, best.Evaluation.Cost)
		log.Infof("GA Gen %d/%d bestCost %.3f energy %.3f Wh avg %.2f km/h",
			gen+1, rc.Generations,
			best.Evaluation.Cost, best.Evaluation.EnergyWh, best.Evaluation.AvgSpeed*3.6)
		if o.progress != nil {
			o.progress(gen, rc.Generations,
				best.Evaluation.Cost, best.Evaluation.EnergyWh, best.Evaluation.AvgSpeed)
		}
		if gen == rc.Generations-1 {
			break
		}

		next := make([]*Individual, 0, rc.Population)
		for i := 0; i < rc.Elite && i < len(pop); i++ {
			next = append(next, &Individual{Vector: cloneVector(pop[i].Vector)})
		}
		for len(next) < rc.Population {
			p1 := tournament(pop, o.engine)
			p2 := tournament(pop, o.engine)
			var c1, c2 []float64
			if o.engine.PTrue(rc.CrossoverRate) {
				c1, c2 = crossover(p1, p2, o.engine)
			} else {
				c1, c2 = cloneVector(p1), cloneVector(p2)
			}
			mutate(c1, rc.MutationRate, o.engine)
			mutate(c2, rc.MutationRate, o.engine)
			next = append(next, &Individual{Vector: c1})
			if len(next) < rc.Population {
				next = append(next, &Individual{Vector: c2})
			}
		}
		pop = next
	}

	return &Result{
		Policy:    vehicle.PolicyFromVector(best.Vector),
		Best:      best.Evaluation,
		CostTrace: trace,
	}, nil
}

package optimizer

import (
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/track"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/config"
)

const (
	speedPenaltyGain = 5  // 平均速度偏离目标区间的惩罚系数
	timePenaltyGain  = 10 // 超出用时预算的惩罚系数
)

// Evaluation 评估结果
// 功能：一条策略经一次完整模拟得到的代价与适应度
// 说明：代价是原始的惩罚能耗目标（越小越好），适应度是其排序
// 变换1/(1+代价)，严格落在(0, 1]，仅用于排序
type Evaluation struct {
	Cost      float64 // 代价=能耗×速度惩罚×用时惩罚
	Fitness   float64 // 适应度=1/(1+代价)
	EnergyWh  float64 // 能耗（瓦时）
	AvgSpeed  float64 // 平均速度（米/秒）
	TotalTime float64 // 总用时（秒）
	Capped    bool    // 是否因兜底时钟耗尽而终止
}

// Evaluator 适应度评估器
// 功能：包装模拟器为优化器的目标函数
// 说明：Evaluate是(策略, 赛道, 配置)的纯函数，无共享可变状态，
// 因此整代种群可以并行评估
type Evaluator struct {
	track *track.Track
	rcfg  *config.RuntimeConfig
}

// NewEvaluator 创建适应度评估器
func NewEvaluator(trk *track.Track, rcfg *config.RuntimeConfig) *Evaluator {
	return &Evaluator{track: trk, rcfg: rcfg}
}

// Evaluate 评估一条策略
// 功能：执行一次完整模拟并计算代价与适应度
// 算法说明：
// 1. 模拟到终止圈数（或兜底时钟耗尽），得到能耗、平均速度、用时
// 2. 速度惩罚：平均速度低于目标下限时1+5×相对差额，高于上限时
//    1+5×相对超额，区间内为1
// 3. 用时惩罚：超出用时预算时1+10×相对超额，否则为1
// 4. 代价=能耗×速度惩罚×用时惩罚，适应度=1/(1+代价)
func (e *Evaluator) Evaluate(p vehicle.Policy) Evaluation {
	outcome := vehicle.Run(e.track, e.rcfg, e.rcfg.GAStep, p, vehicle.Options{})

	speedPenalty := 1.0
	if outcome.AvgSpeed < e.rcfg.TargetSpeedMin {
		speedPenalty = 1 + speedPenaltyGain*(e.rcfg.TargetSpeedMin-outcome.AvgSpeed)/e.rcfg.TargetSpeedMin
	} else if outcome.AvgSpeed > e.rcfg.TargetSpeedMax {
		speedPenalty = 1 + speedPenaltyGain*(outcome.AvgSpeed-e.rcfg.TargetSpeedMax)/e.rcfg.TargetSpeedMax
	}
	timePenalty := 1.0
	if outcome.TotalTime > e.rcfg.AllowedTime {
		timePenalty = 1 + timePenaltyGain*(outcome.TotalTime-e.rcfg.AllowedTime)/e.rcfg.AllowedTime
	}
	cost := outcome.EnergyWh * speedPenalty * timePenalty
	return Evaluation{
		Cost:      cost,
		Fitness:   1 / (1 + cost),
		EnergyWh:  outcome.EnergyWh,
		AvgSpeed:  outcome.AvgSpeed,
		TotalTime: outcome.TotalTime,
		Capped:    outcome.Capped,
	}
}

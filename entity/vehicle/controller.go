package vehicle

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/track"
)

const (
	// 前视距离参数：前视距离=lookaheadBase·clamp(v/lookaheadSpeedRef, min, max)
	lookaheadBase     = 50
	lookaheadSpeedRef = 25
	lookaheadMinK     = 0.8
	lookaheadMaxK     = 3.0

	// 比例制动系数（牛/(米/秒)）
	preBrakeGain    = 35 // 弯道前预制动
	cornerBrakeGain = 45 // 弯道内制动

	// 预制动触发的弯道安全速度比例
	preBrakeSpeedRatio = 0.9

	// 起步阶段的功率限制速度下限，避免近零速度下驱动力发散
	launchPowerLimitV = 0.5

	// 直道功率转力的速度下限
	straightVFloor = 1.0

	// 平均速度反馈系数
	governorSlowK = 0.6
	governorFastK = 1.1

	// 停车点判定容差
	stopWindowTolerance = 1.0 // 进入制动窗口的距离容差（米）
	stopSnapDistance    = 0.5 // 吸附到停车点的距离容差（米）
	stopSnapSpeed       = 0.5 // 吸附到停车点的速度阈值（米/秒）
)

// controller 车辆控制器
// 功能：车辆控制策略状态机，每个模拟步输出一个控制动作
// 说明：各策略按优先级依次尝试：定点停车（接管期间抢占起步）、
// 起步、弯道前视预制动、直道油门脉冲、弯道内控制；最后叠加
// 全局调速器。全部输入取自上一步快照
type controller struct {
	// 控制器保持的参数

	self            *Vehicle // 模块所在车辆
	mass            float64  // 整车质量（千克）
	maxForce        float64  // 最大驱动力（牛）
	maxBrake        float64  // 最大制动力（牛）
	maxPower        float64  // 额定功率（瓦）
	efficiency      float64  // 传动效率
	launchSpeed     float64  // 起步速度阈值（米/秒）
	safeCornerSpeed float64  // 弯道安全速度（米/秒）
	maxSpeed        float64  // 最高车速（米/秒）
	targetSpeedMin  float64  // 目标平均速度下限（米/秒）
	targetSpeedMax  float64  // 目标平均速度上限（米/秒）

	// 每次update时更新

	v   float64        // 当前速度
	pos track.Position // 当前弧长位置
	dt  float64        // 时间步长
}

// newController 创建车辆控制器
// 功能：从运行时配置预读控制参数
func newController(self *Vehicle) *controller {
	rc := self.rcfg
	return &controller{
		self:            self,
		mass:            rc.Mass,
		maxForce:        rc.MaxForce,
		maxBrake:        rc.MaxBrakeForce,
		maxPower:        rc.MaxPower,
		efficiency:      rc.Efficiency,
		launchSpeed:     rc.LaunchSpeed,
		safeCornerSpeed: rc.SafeCornerSpeed,
		maxSpeed:        rc.MaxSpeed,
		targetSpeedMin:  rc.TargetSpeedMin,
		targetSpeedMax:  rc.TargetSpeedMax,
	}
}

// update 计算本步的控制动作
// 功能：按优先级执行策略状态机并叠加全局调速器
// 参数：dt-时间步长（秒）
// 返回：控制动作
func (c *controller) update(dt float64) (ac Action) {
	snap := &c.self.snapshot
	c.v = snap.V
	c.pos = snap.Position
	c.dt = dt

	var ok bool
	if ac, ok = c.policyStop(snap); !ok {
		if ac, ok = c.policyLaunch(); !ok {
			if ac, ok = c.policyCornerAhead(); !ok {
				trk := c.self.track
				seg := trk.SegmentAt(c.pos)
				if si := trk.StraightIndex(seg); si >= 0 {
					ac = c.policyStraight(si)
				} else {
					ac = c.policyCorner()
				}
			}
		}
	}
	c.applyGovernors(snap, &ac)
	return
}

// policyStop 定点停车接管
// 功能：接近停车点时施加恰好停在目标点的制动力
// 返回：动作与是否接管本步控制
// 算法说明：到停车点的前向距离不大于制动距离m·v²/(2·F_max)加容差时
// 进入制动窗口；制动力按F=m·v²/(2·d)计算并钳位。接管期间抢占起步
// 策略，否则减速中的车辆会在低速段被重新起步
func (c *controller) policyStop(snap *runtime) (ac Action, ok bool) {
	if !c.self.stopsEnabled() || !snap.HasNextStop {
		return
	}
	d := c.self.track.ForwardDistance(c.pos, snap.NextStop)
	brakingDistance := c.mass * c.v * c.v / (2 * c.maxBrake)
	if d > brakingDistance+stopWindowTolerance {
		return
	}
	ac.State = StateStopBraking
	ac.SetBrakeForce(c.mass, c.v, d, c.maxBrake)
	return ac, true
}

// policyLaunch 起步策略
// 功能：速度低于起步阈值时施加最大驱动力
// 说明：速度超过0.5米/秒后受额定功率限制，防止近零速度下
// 功率转力发散
func (c *controller) policyLaunch() (ac Action, ok bool) {
	if c.v >= c.launchSpeed {
		return
	}
	drive := c.maxForce
	if c.v > launchPowerLimitV {
		drive = math.Min(c.maxForce, c.maxPower*c.efficiency/c.v)
	}
	return Action{Drive: drive, State: StateLaunch}, true
}

// policyCornerAhead 弯道前视预制动
// 功能：前方出现弯道且速度偏高时提前比例制动
// 算法说明：前视距离随速度缩放（系数钳位在[0.8, 3.0]）；前视点
// 落在弯道段且速度超过弯道安全速度的90%时，按超出量比例制动
func (c *controller) policyCornerAhead() (ac Action, ok bool) {
	trk := c.self.track
	lookahead := lookaheadBase * lo.Clamp(c.v/lookaheadSpeedRef, lookaheadMinK, lookaheadMaxK)
	seg := trk.SegmentAt(trk.Forward(c.pos, lookahead))
	threshold := preBrakeSpeedRatio * c.safeCornerSpeed
	if !trk.IsCorner(seg) || c.v <= threshold {
		return
	}
	brake := math.Min(c.maxBrake, (c.v-threshold)*preBrakeGain)
	return Action{Brake: brake, State: StatePreBrake}, true
}

// policyStraight 直道油门脉冲策略
// 功能：按策略给定的油门比例施加驱动力，超过脉冲比例后滑行
// 参数：si-当前直道序号
// 算法说明：
// 1. 直道内进度=从直道起点的前向距离/直道长度（环绕安全，
//    跨起终点线的直道同样正确）
// 2. 进度不超过脉冲比例时：期望功率=油门比例×额定功率，
//    驱动力=期望功率×效率/max(v, 1.0)，钳位到最大驱动力
// 3. 超过脉冲比例后滑行
func (c *controller) policyStraight(si int) (ac Action) {
	policy := c.self.policy
	if si >= len(policy) {
		log.Panicf("no policy entry for straight %d (policy has %d entries)", si, len(policy))
	}
	st := c.self.track.Straights()[si]
	frac := c.self.track.ForwardDistance(st.Start, c.pos) / st.Length
	entry := policy[si]
	if frac > entry.Pulse {
		return Action{State: StateStraightCoasting}
	}
	desired := entry.Throttle * c.maxPower
	drive := math.Min(c.maxForce, desired*c.efficiency/math.Max(c.v, straightVFloor))
	return Action{
		Drive: drive,
		State: fmt.Sprintf("Throttle %.0f%% | S%d", entry.Throttle*100, si),
	}
}

// policyCorner 弯道内控制
// 功能：超过弯道安全速度时比例制动，否则滑行
func (c *controller) policyCorner() (ac Action) {
	if c.v > c.safeCornerSpeed {
		brake := math.Min(c.maxBrake, (c.v-c.safeCornerSpeed)*cornerBrakeGain)
		return Action{Brake: brake, State: StateCornerBraking}
	}
	return Action{State: StateCornerCoasting}
}

// applyGovernors 全局调速器
// 功能：对动作中的驱动力叠加全局限制
// 算法说明：
// 1. 达到最高车速时驱动力硬性清零
// 2. 行程平均速度高于目标区间上限时驱动力×0.6，低于下限时×1.1，
//    构成保持平均速度在目标走廊内的比例反馈
func (c *controller) applyGovernors(snap *runtime, ac *Action) {
	if c.v >= c.maxSpeed {
		ac.Drive = 0
		ac.State = StateSpeedLimited
		return
	}
	// 快照对应上一步结束时刻，经过时间需要扣除本步步长
	elapsed := c.self.clock.T - c.self.startT - c.dt
	if elapsed <= 0 {
		return
	}
	avg := snap.Distance / elapsed
	if avg > c.targetSpeedMax {
		ac.Drive *= governorSlowK
	} else if avg < c.targetSpeedMin {
		ac.Drive *= governorFastK
	}
}

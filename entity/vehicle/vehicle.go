package vehicle

import (
	"flag"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/clock"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/track"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/container"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// Vehicle 车辆实体
// 功能：在给定赛道上按策略推进的单车模拟实体
// 说明：采用快照/运行时两阶段更新：prepare将运行时复制为快照，
// update读快照写运行时，保证每步严格依赖上一步状态
type Vehicle struct {
	track      *track.Track
	rcfg       *config.RuntimeConfig
	policy     Policy
	clock      *clock.Clock
	controller *controller
	opts       Options

	startT float64 // 本次运行的起始仿真时间（秒）

	runtime  runtime // 运行时
	snapshot runtime // 快照

	// 本圈停车点队列，按前向距离排序，圈边界跨越时重建
	stopQueue *container.PriorityQueue[float64]

	frames []Frame // 遥测记录
}

// newVehicle 创建车辆实体
// 功能：初始化车辆状态、控制器与停车计划
// 说明：策略条目数与直道数不符时以缺省项对齐并告警
func newVehicle(
	trk *track.Track,
	rcfg *config.RuntimeConfig,
	policy Policy,
	c *clock.Clock,
	opts Options,
) *Vehicle {
	if n := len(trk.Straights()); len(policy) != n {
		log.Warnf("policy has %d entries but track has %d straights, reconciling", len(policy), n)
		reconciled := make(Policy, 0, n)
		reconciled = append(reconciled, policy...)
		for len(reconciled) < n {
			reconciled = append(reconciled, PolicyEntry{Throttle: defaultThrottle, Pulse: defaultPulse})
		}
		policy = reconciled[:n]
	}
	v := &Vehicle{
		track:  trk,
		rcfg:   rcfg,
		policy: policy,
		clock:  c,
		opts:   opts,
		startT: c.T,
	}
	v.controller = newController(v)
	if v.stopsEnabled() {
		v.resetStopSchedule()
	}
	return v
}

// stopsEnabled 是否启用定点停车
func (v *Vehicle) stopsEnabled() bool {
	return v.rcfg.Stops.Enabled && len(v.rcfg.Stops.Positions) > 0
}

// resetStopSchedule 重建本圈停车计划
// 功能：将配置的停车点按从当前位置起的前向距离排入优先队列，
// 并取出最近的停车点作为当前目标
// 说明：在运行开始时与每次圈边界跨越时调用
func (v *Vehicle) resetStopSchedule() {
	q := container.NewPriorityQueue[float64]()
	for _, s := range v.rcfg.Stops.Positions {
		pos := v.track.At(s)
		q.Push(float64(pos), v.track.ForwardDistance(v.runtime.Position, pos))
	}
	q.Heapify()
	v.stopQueue = q
	v.advanceStop()
}

// advanceStop 取出下一个停车点
func (v *Vehicle) advanceStop() {
	rt := &v.runtime
	if v.stopQueue.Len() == 0 {
		rt.HasNextStop = false
		return
	}
	s, _ := v.stopQueue.HeapPop()
	rt.NextStop = v.track.At(s)
	rt.HasNextStop = true
}

// prepare 准备阶段，每步执行一次
// 功能：推进时钟、输出心跳日志、将运行时复制为快照
func (v *Vehicle) prepare() {
	v.clock.Tick()
	if v.opts.Heartbeat && v.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := v.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) lap %d distance %.1fm speed %.2fm/s",
			v.clock.InternalStep,
			hour, minute, second,
			v.runtime.Lap, v.runtime.Distance, v.runtime.V,
		)
	}
	v.snapshot = v.runtime
}

// update 更新阶段，每步执行一次
// 功能：执行控制策略状态机与积分，处理定点停车的到达与释放
// 算法说明：
// 1. 保持中的车辆原地停住并累计保持时长，到时后释放并取下一个停车点
// 2. 正常行驶：控制器产生动作，积分更新运行时
// 3. 停车到达判定：跨越检测防止单步越过停车点而漏触发
// 4. 圈边界跨越（运行时圈数大于快照圈数）时重建停车计划
func (v *Vehicle) update(dt float64) {
	if v.snapshot.Holding {
		v.holdStep(dt)
		return
	}
	ac := v.controller.update(dt)
	v.refreshRuntime(ac, dt)
	if v.stopsEnabled() && v.snapshot.HasNextStop {
		v.checkStopArrival(ac)
	}
	if v.stopsEnabled() && v.runtime.Lap > v.snapshot.Lap {
		v.resetStopSchedule()
	}
}

// holdStep 停车保持
// 功能：位置钉在停车点、速度清零，保持配置的时长后释放
func (v *Vehicle) holdStep(dt float64) {
	rt := &v.runtime
	rt.V = 0
	rt.Power = 0
	rt.Action = Action{State: StateStopped}
	rt.HoldElapsed += dt
	if rt.HoldElapsed >= v.rcfg.Stops.Dwell {
		rt.Holding = false
		rt.HoldElapsed = 0
		v.advanceStop()
	}
}

// checkStopArrival 停车到达判定
// 功能：判断本步是否到达当前停车点，到达则吸附并进入保持
// 算法说明：满足任一条件视为到达：
// 1. 本步位移跨越了停车点（环绕安全的跨越检测）
// 2. 距停车点不足吸附容差
// 3. 处于定点制动中且速度降到吸附阈值以下
func (v *Vehicle) checkStopArrival(ac Action) {
	snap, rt := &v.snapshot, &v.runtime
	stop := snap.NextStop
	crossed := v.track.Crossed(snap.Position, rt.Position, stop)
	near := v.track.ForwardDistance(rt.Position, stop) <= stopSnapDistance
	slowInWindow := ac.State == StateStopBraking && rt.V < stopSnapSpeed
	if !crossed && !near && !slowInWindow {
		return
	}
	rt.Position = stop
	rt.V = 0
	rt.Power = 0
	rt.Holding = true
	rt.HoldElapsed = 0
	rt.Action = Action{State: StateStopped}
}

// refreshRuntime 积分更新运行时
// 功能：根据控制动作推进速度、位置、里程、能耗与圈数
// 算法说明：
// 1. 阻力=气动阻力½ρ·Cd·A·v²+滚动阻力m·g·Crr
// 2. 净力=驱动力×效率-阻力-制动力，加速度=净力/质量
// 3. 新速度钳位到[0, 最高车速]，位移按梯形法（平均速度×dt）
// 4. 轮上功率=驱动力×新速度，折算回电机侧并钳位到[0, 额定功率]，
//    能耗按瓦时累计
// 5. 圈数=floor(累计里程/赛道总长)
func (v *Vehicle) refreshRuntime(ac Action, dt float64) {
	rc := v.rcfg
	snap, rt := &v.snapshot, &v.runtime
	speed := snap.V
	resist := 0.5*rc.AirDensity*rc.DragCoefficient*rc.FrontalArea*speed*speed +
		rc.Mass*rc.Gravity*rc.RollingCoefficient
	net := ac.Drive*rc.Efficiency - resist - ac.Brake
	a := net / rc.Mass
	newV := lo.Clamp(speed+a*dt, 0, rc.MaxSpeed)
	advance := (speed + newV) / 2 * dt
	rt.V = newV
	rt.Distance = snap.Distance + advance
	rt.Position = v.track.Forward(snap.Position, advance)
	wheelPower := ac.Drive * newV
	motorPower := lo.Clamp(wheelPower/rc.Efficiency, 0, rc.MaxPower)
	rt.EnergyWh = snap.EnergyWh + motorPower*dt/3600
	rt.Power = motorPower
	rt.Lap = int(rt.Distance / v.track.TotalLength())
	rt.Action = ac
}

// recordFrame 记录本步遥测帧
func (v *Vehicle) recordFrame() {
	if !v.opts.Telemetry && v.opts.FrameSink == nil {
		return
	}
	rt := &v.runtime
	pt := v.track.PointAt(rt.Position)
	lng, lat := v.track.LngLatAt(rt.Position)
	f := Frame{
		T:        v.clock.T - v.startT,
		Distance: rt.Distance,
		Speed:    rt.V,
		SpeedKmh: rt.V * 3.6,
		Power:    rt.Power,
		EnergyWh: rt.EnergyWh,
		State:    rt.Action.State,
		Lap:      rt.Lap,
		X:        pt.X,
		Y:        pt.Y,
		Lng:      lng,
		Lat:      lat,
	}
	if v.opts.Telemetry {
		v.frames = append(v.frames, f)
	}
	if v.opts.FrameSink != nil {
		v.opts.FrameSink(f)
	}
}

// Run 执行一次完整模拟
// 功能：在给定赛道上按策略推进车辆直至终止条件，返回聚合结果
// 参数：trk-赛道，rcfg-运行时配置，stepConfig-本次运行的时钟配置，
// policy-行驶策略，opts-运行选项
// 返回：模拟结果
// 说明：终止条件为完成目标圈数（启用时）或时钟耗尽；后者是针对
// 永不收敛策略的兜底，结果标记Capped而不报错
func Run(
	trk *track.Track,
	rcfg *config.RuntimeConfig,
	stepConfig config.ControlStep,
	policy Policy,
	opts Options,
) *Outcome {
	c := clock.New(stepConfig)
	v := newVehicle(trk, rcfg, policy, c, opts)
	capped := false
	for {
		v.prepare()
		v.update(c.DT)
		v.recordFrame()
		if rcfg.StopAfterFinish && v.runtime.Lap >= rcfg.Laps {
			break
		}
		if c.Done() {
			capped = true
			break
		}
	}
	totalTime := c.T - v.startT
	outcome := &Outcome{
		TotalTime:     totalTime,
		TotalDistance: v.runtime.Distance,
		EnergyWh:      v.runtime.EnergyWh,
		Laps:          v.runtime.Lap,
		Capped:        capped,
		Telemetry:     v.frames,
	}
	if totalTime > 0 {
		outcome.AvgSpeed = v.runtime.Distance / totalTime
	}
	return outcome
}

package config

import (
	"fmt"
)

// 行为参数与遗传算法参数的默认值
const (
	defaultLaunchSpeed        = 1.5 // 米/秒
	defaultSafeCornerSpeedKmh = 99
	defaultMaxSpeedKmh        = 32
	defaultTargetSpeedMinKmh  = 24
	defaultTargetSpeedMaxKmh  = 27
	defaultLaps               = 4
	defaultLapTimeLimitMin    = 30
	defaultCornerWindow       = 8
	defaultCornerThresholdDeg = 9
	defaultStopDwell          = 10 // 秒

	defaultPopulation    = 36
	defaultGenerations   = 40
	defaultCrossoverRate = 0.9
	defaultMutationRate  = 0.12
	defaultElite         = 2
)

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息，完成单位换算与参数校验
// 说明：将YAML配置转换为运行时可用的配置对象；速度类参数统一换算
// 为米/秒，并推导用时预算等派生量。物理参数缺失或非法时构造失败，
// 保证在任何模拟步执行前报错
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置

	// 车辆物理参数（国际单位制）

	Mass               float64 // 整车质量（千克）
	DragCoefficient    float64 // 风阻系数Cd
	FrontalArea        float64 // 迎风面积（平方米）
	RollingCoefficient float64 // 滚动阻力系数Crr
	MaxPower           float64 // 电机额定功率（瓦）
	MaxForce           float64 // 电机最大驱动力（牛）
	MaxBrakeForce      float64 // 最大制动力（牛）
	Efficiency         float64 // 传动系统效率，(0,1]
	Gravity            float64 // 重力加速度（米/秒²）
	AirDensity         float64 // 空气密度（千克/立方米）

	// 行驶策略参数（速度已换算为米/秒）

	LaunchSpeed        float64 // 起步阶段速度阈值（米/秒）
	SafeCornerSpeed    float64 // 弯道安全速度（米/秒）
	MaxSpeed           float64 // 最高车速（米/秒）
	TargetSpeedMin     float64 // 目标平均速度下限（米/秒）
	TargetSpeedMax     float64 // 目标平均速度上限（米/秒）
	Laps               int     // 目标圈数
	AllowedTime        float64 // 用时预算（秒），由官方单圈限时推导
	CornerWindow       int     // 弯道判定窗口（段数）
	CornerThresholdDeg float64 // 弯道判定角度阈值（度）
	StopAfterFinish    bool    // 完成目标圈数后是否停止模拟
	Stops              Stops   // 定点停车配置

	// 遗传算法参数

	Population    int         // 种群规模
	Generations   int         // 演化代数，0表示跳过优化
	CrossoverRate float64     // 交叉概率
	MutationRate  float64     // 单基因变异概率
	Elite         int         // 精英保留数量
	GAStep        ControlStep // 适应度评估的时钟配置
}

// kmhToMs 千米/小时换算为米/秒
func kmhToMs(v float64) float64 {
	return v / 3.6
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：校验物理参数、填充行为参数默认值、完成单位换算
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针；物理参数非法时返回错误
// 算法说明：
// 1. 校验全部必填物理参数为正值，效率额外要求不超过1
// 2. 行为参数逐项填充默认值（速度类参数换算为米/秒）
// 3. 推导用时预算：官方限时按4圈定义，AllowedTime=限时/4×目标圈数
// 4. 遗传算法参数填充默认值，指针字段区分省略与显式置零
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control
	if rc.C.Step.Interval <= 0 {
		rc.C.Step.Interval = 0.9
	}
	if rc.C.Step.Total <= 0 {
		// 兜底模拟时长2小时
		rc.C.Step.Total = int32(2 * 3600 / rc.C.Step.Interval)
	}

	// 物理参数校验，缺失（零值）与非正值一视同仁
	v := config.Vehicle
	for _, item := range []struct {
		name  string
		value float64
	}{
		{"vehicle.mass", v.Mass},
		{"vehicle.drag_coefficient", v.DragCoefficient},
		{"vehicle.frontal_area", v.FrontalArea},
		{"vehicle.rolling_coefficient", v.RollingCoefficient},
		{"vehicle.max_power", v.MaxPower},
		{"vehicle.max_force", v.MaxForce},
		{"vehicle.max_brake_force", v.MaxBrakeForce},
		{"vehicle.efficiency", v.Efficiency},
		{"vehicle.gravity", v.Gravity},
		{"vehicle.air_density", v.AirDensity},
	} {
		if item.value <= 0 {
			return nil, fmt.Errorf("invalid configuration: %s must be a positive number, got %v", item.name, item.value)
		}
	}
	if v.Efficiency > 1 {
		return nil, fmt.Errorf("invalid configuration: vehicle.efficiency must be in (0, 1], got %v", v.Efficiency)
	}
	rc.Mass = v.Mass
	rc.DragCoefficient = v.DragCoefficient
	rc.FrontalArea = v.FrontalArea
	rc.RollingCoefficient = v.RollingCoefficient
	rc.MaxPower = v.MaxPower
	rc.MaxForce = v.MaxForce
	rc.MaxBrakeForce = v.MaxBrakeForce
	rc.Efficiency = v.Efficiency
	rc.Gravity = v.Gravity
	rc.AirDensity = v.AirDensity

	// 行为参数默认值与单位换算
	s := config.Strategy
	rc.LaunchSpeed = orDefault(s.LaunchSpeed, defaultLaunchSpeed)
	rc.SafeCornerSpeed = kmhToMs(orDefault(s.SafeCornerSpeedKmh, defaultSafeCornerSpeedKmh))
	rc.MaxSpeed = kmhToMs(orDefault(s.MaxSpeedKmh, defaultMaxSpeedKmh))
	rc.TargetSpeedMin = kmhToMs(orDefault(s.TargetSpeedMinKmh, defaultTargetSpeedMinKmh))
	rc.TargetSpeedMax = kmhToMs(orDefault(s.TargetSpeedMaxKmh, defaultTargetSpeedMaxKmh))
	if rc.TargetSpeedMin > rc.TargetSpeedMax {
		return nil, fmt.Errorf("invalid configuration: strategy target speed band [%v, %v] km/h is empty",
			s.TargetSpeedMinKmh, s.TargetSpeedMaxKmh)
	}
	rc.Laps = defaultLaps
	if s.Laps > 0 {
		rc.Laps = s.Laps
	}
	lapTimeLimitMin := orDefault(s.LapTimeLimitMin, defaultLapTimeLimitMin)
	// 官方限时按4圈赛段定义，换算为每圈预算后乘以目标圈数
	rc.AllowedTime = lapTimeLimitMin * 60 / 4 * float64(rc.Laps)
	rc.CornerWindow = defaultCornerWindow
	if s.CornerWindow > 0 {
		rc.CornerWindow = s.CornerWindow
	}
	rc.CornerThresholdDeg = orDefault(s.CornerThresholdDeg, defaultCornerThresholdDeg)
	rc.StopAfterFinish = true
	if s.StopAfterFinish != nil {
		rc.StopAfterFinish = *s.StopAfterFinish
	}
	rc.Stops = s.Stops
	if rc.Stops.Enabled {
		if rc.Stops.Dwell <= 0 {
			rc.Stops.Dwell = defaultStopDwell
		}
		if len(rc.Stops.Positions) == 0 {
			return nil, fmt.Errorf("invalid configuration: strategy.stops.enabled requires at least one position")
		}
	}

	// 遗传算法参数
	ga := config.GA
	rc.Population = defaultPopulation
	if ga.Population > 0 {
		rc.Population = ga.Population
	}
	rc.Generations = defaultGenerations
	if ga.Generations != nil {
		if *ga.Generations < 0 {
			return nil, fmt.Errorf("invalid configuration: ga.generations must be non-negative, got %d", *ga.Generations)
		}
		rc.Generations = *ga.Generations
	}
	rc.CrossoverRate = defaultCrossoverRate
	if ga.CrossoverRate != nil {
		rc.CrossoverRate = *ga.CrossoverRate
	}
	rc.MutationRate = defaultMutationRate
	if ga.MutationRate != nil {
		rc.MutationRate = *ga.MutationRate
	}
	rc.Elite = defaultElite
	if ga.Elite != nil {
		rc.Elite = *ga.Elite
	}
	if rc.CrossoverRate < 0 || rc.CrossoverRate > 1 {
		return nil, fmt.Errorf("invalid configuration: ga.crossover_rate must be in [0, 1], got %v", rc.CrossoverRate)
	}
	if rc.MutationRate < 0 || rc.MutationRate > 1 {
		return nil, fmt.Errorf("invalid configuration: ga.mutation_rate must be in [0, 1], got %v", rc.MutationRate)
	}
	if rc.Elite > rc.Population {
		return nil, fmt.Errorf("invalid configuration: ga.elite %d exceeds population %d", rc.Elite, rc.Population)
	}
	rc.GAStep = ga.Step
	if rc.GAStep.Interval <= 0 {
		rc.GAStep.Interval = 0.2
	}
	if rc.GAStep.Total <= 0 {
		// 兜底模拟时长2小时
		rc.GAStep.Total = int32(2 * 3600 / rc.GAStep.Interval)
	}

	return rc, nil
}

// orDefault 返回配置值，零值时返回默认值
func orDefault(value, def float64) float64 {
	if value > 0 {
		return value
	}
	return def
}

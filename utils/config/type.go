package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：支持MongoDB数据库和文件系统两种数据源，支持缓存机制
type InputPath struct {
	DB        string `yaml:"db"`                   // 数据库名
	Col       string `yaml:"col"`                  // 集合名
	Cache     string `yaml:"cache,omitempty"`      // 缓存文件名，为空则采用默认路径{db}.{col}.json
	OnlyCache bool   `yaml:"only_cache,omitempty"` // 只从缓存中获取
	File      string `yaml:"file,omitempty"`       // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
// 功能：返回配置的数据库名称
// 返回：数据库名称字符串
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
// 功能：返回配置的集合名称
// 返回：集合名称字符串
func (p InputPath) GetColl() string {
	return p.Col
}

// GetCachePath 获取缓存文件路径
// 功能：返回缓存文件的完整路径
// 返回：缓存文件路径字符串
// 算法说明：
// 1. 如果指定了缓存路径，直接返回
// 2. 否则使用默认命名规则：{数据库名}.{集合名}.json
// 说明：提供统一的缓存路径获取接口
func (p InputPath) GetCachePath() string {
	if p.Cache != "" {
		return p.Cache
	}
	return p.DB + "." + p.Col + ".json"
}

// Input 指定模拟器所有输入数据的配置项
// 功能：定义赛道数据的输入配置
// 说明：赛道航点既可来自MongoDB集合，也可来自本地CSV/JSON文件
type Input struct {
	URI   string    `yaml:"uri"`   // MongoDB连接字符串
	Track InputPath `yaml:"track"` // 赛道航点
}

// PolicyFile 策略文件配置
// 功能：指定最优策略的持久化文件路径
// 说明：优化器写入、验证回放读取的唯一交接文件
type PolicyFile struct {
	File string `yaml:"file"` // 策略JSON文件路径
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
// 说明：控制仿真的时间范围、步长和精度；Total*Interval即为兜底模拟时长上限
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
// 说明：Step用于最终验证回放；优化器评估用GA.Step
type Control struct {
	Step ControlStep `yaml:"step"`
	Seed uint64      `yaml:"seed,omitempty"` // 随机数种子
}

// Vehicle 车辆物理参数配置
// 功能：定义车辆的全部物理参数
// 说明：全部字段为必填项，缺失或非正值在构造RuntimeConfig时报错
type Vehicle struct {
	Mass               float64 `yaml:"mass"`                // 整车质量（千克）
	DragCoefficient    float64 `yaml:"drag_coefficient"`    // 风阻系数Cd
	FrontalArea        float64 `yaml:"frontal_area"`        // 迎风面积（平方米）
	RollingCoefficient float64 `yaml:"rolling_coefficient"` // 滚动阻力系数Crr
	MaxPower           float64 `yaml:"max_power"`           // 电机额定功率（瓦）
	MaxForce           float64 `yaml:"max_force"`           // 电机最大驱动力（牛）
	MaxBrakeForce      float64 `yaml:"max_brake_force"`     // 最大制动力（牛）
	Efficiency         float64 `yaml:"efficiency"`          // 传动系统效率，取值(0,1]
	Gravity            float64 `yaml:"gravity"`             // 重力加速度（米/秒²）
	AirDensity         float64 `yaml:"air_density"`         // 空气密度（千克/立方米）
}

// Stops 定点停车配置
// 功能：定义每圈的计划停车点
// 说明：可选功能，默认关闭
type Stops struct {
	Enabled   bool      `yaml:"enabled,omitempty"`   // 是否启用定点停车
	Dwell     float64   `yaml:"dwell,omitempty"`     // 停车保持时长（秒）
	Positions []float64 `yaml:"positions,omitempty"` // 每圈停车点的弧长位置（米）
}

// Strategy 行驶策略行为参数配置
// 功能：定义控制策略的行为阈值
// 说明：全部为可选项，省略时采用默认值；速度类参数使用千米/小时，
// 在RuntimeConfig中统一换算为米/秒
type Strategy struct {
	LaunchSpeed        float64 `yaml:"launch_speed,omitempty"`          // 起步阶段速度阈值（米/秒）
	SafeCornerSpeedKmh float64 `yaml:"safe_corner_speed_kmh,omitempty"` // 弯道安全速度（千米/小时）
	MaxSpeedKmh        float64 `yaml:"max_speed_kmh,omitempty"`         // 最高车速（千米/小时）
	TargetSpeedMinKmh  float64 `yaml:"target_speed_min_kmh,omitempty"`  // 目标平均速度下限（千米/小时）
	TargetSpeedMaxKmh  float64 `yaml:"target_speed_max_kmh,omitempty"`  // 目标平均速度上限（千米/小时）
	Laps               int     `yaml:"laps,omitempty"`                  // 目标圈数
	LapTimeLimitMin    float64 `yaml:"lap_time_limit_min,omitempty"`    // 官方用时限制（分钟，按4圈定义）
	CornerWindow       int     `yaml:"corner_window,omitempty"`         // 弯道判定窗口（段数）
	CornerThresholdDeg float64 `yaml:"corner_threshold_deg,omitempty"`  // 弯道判定角度阈值（度）
	StopAfterFinish    *bool   `yaml:"stop_after_finish,omitempty"`     // 完成目标圈数后是否停止模拟
	Stops              Stops   `yaml:"stops,omitempty"`                 // 定点停车
}

// GA 遗传算法配置
// 功能：定义遗传算法的超参数
// 说明：指针字段区分“省略”与“显式置零”；Generations为0时跳过优化，
// 仅执行验证回放
type GA struct {
	Population    int         `yaml:"population,omitempty"`     // 种群规模
	Generations   *int        `yaml:"generations,omitempty"`    // 演化代数
	CrossoverRate *float64    `yaml:"crossover_rate,omitempty"` // 交叉概率
	MutationRate  *float64    `yaml:"mutation_rate,omitempty"`  // 单基因变异概率
	Elite         *int        `yaml:"elite,omitempty"`          // 精英保留数量
	Step          ControlStep `yaml:"step,omitempty"`           // 适应度评估的时钟配置
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
// 说明：包含输入、策略文件、控制、车辆、策略、遗传算法等所有配置项
type Config struct {
	Input    Input      `yaml:"input"`              // 输入
	Policy   PolicyFile `yaml:"policy"`             // 策略文件
	Control  Control    `yaml:"control"`            // 模拟过程控制
	Vehicle  Vehicle    `yaml:"vehicle"`            // 车辆物理参数
	Strategy Strategy   `yaml:"strategy,omitempty"` // 行驶策略参数
	GA       GA         `yaml:"ga,omitempty"`       // 遗传算法参数
}

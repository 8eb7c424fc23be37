package vehicle

// Frame 遥测帧
// 功能：记录一个模拟步结束时的完整车辆状态快照
// 说明：验证回放逐步产生；供外部界面做曲线与轨迹展示
type Frame struct {
	T        float64 `json:"t"`         // 仿真时间（秒）
	Distance float64 `json:"distance"`  // 累计行驶距离（米）
	Speed    float64 `json:"speed"`     // 瞬时速度（米/秒）
	SpeedKmh float64 `json:"speed_kmh"` // 瞬时速度（千米/小时）
	Power    float64 `json:"power"`     // 电机功率（瓦）
	EnergyWh float64 `json:"energy_wh"` // 累计能耗（瓦时）
	State    string  `json:"state"`     // 控制状态标签
	Lap      int     `json:"lap"`       // 当前圈数
	X        float64 `json:"x"`         // 平面坐标x（米）
	Y        float64 `json:"y"`         // 平面坐标y（米）
	Lng      float64 `json:"lng"`       // 经度（度）
	Lat      float64 `json:"lat"`       // 纬度（度）
}

// Outcome 模拟结果
// 功能：一次完整模拟运行的聚合指标与可选的逐步遥测
// 说明：每次运行新建，返回后不再修改
type Outcome struct {
	TotalTime     float64 `json:"total_time"`     // 总用时（秒）
	TotalDistance float64 `json:"total_distance"` // 总行驶距离（米）
	EnergyWh      float64 `json:"energy_wh"`      // 总能耗（瓦时）
	AvgSpeed      float64 `json:"avg_speed"`      // 平均速度（米/秒）
	Laps          int     `json:"laps"`           // 完成圈数
	Capped        bool    `json:"capped"`         // 是否因兜底时钟耗尽而终止
	Telemetry     []Frame `json:"telemetry,omitempty"`
}

// Options 模拟运行选项
type Options struct {
	Telemetry bool        // 是否记录逐步遥测
	Heartbeat bool        // 是否输出心跳日志
	FrameSink func(Frame) // 可选的逐帧回调，供外部流式消费
}

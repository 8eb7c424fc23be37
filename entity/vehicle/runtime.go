package vehicle

import (
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/track"
)

// runtime 车辆运行时数据结构
// 功能：记录车辆在模拟过程中的全部运行时状态
// 说明：该数据结构需要可以被直接复制，不应产生浅拷贝带来的副作用；
// 原实现通过模块级全局变量维护停车保持状态，这里全部收敛到本结构，
// 由车辆实体独占持有
type runtime struct {
	Position track.Position // 弧长位置
	V        float64        // 速度（米/秒）
	Distance float64        // 累计行驶距离（米）
	Lap      int            // 圈数计数器
	EnergyWh float64        // 累计能耗（瓦时）
	Power    float64        // 本步电机功率（瓦）
	Action   Action         // 本步控制动作

	// 定点停车运行时

	Holding     bool           // 是否处于停车保持中
	HoldElapsed float64        // 已保持时长（秒）
	NextStop    track.Position // 下一个停车点的弧长位置
	HasNextStop bool           // 本圈是否还有未到达的停车点
}

package vehicle

import "github.com/samber/lo"

// 控制状态标签，随遥测输出供外部界面展示
const (
	StateLaunch           = "Launch"
	StatePreBrake         = "Pre-Brake"
	StateStraightCoasting = "Straight Coasting"
	StateCornerBraking    = "Corner Braking"
	StateCornerCoasting   = "Corner Coasting"
	StateStopBraking      = "Stop Braking"
	StateStopped          = "Stopped"
	StateSpeedLimited     = "Speed Limited"
)

// Action 车辆控制动作
// 功能：描述控制器在一个模拟步内的输出，包括驱动力、制动力与状态标签
// 说明：驱动力与制动力均为非负值，由积分环节合成净力
type Action struct {
	Drive float64 // 驱动力（牛）
	Brake float64 // 制动力（牛）
	State string  // 控制状态标签
}

// SetBrakeForce 设置定点制动力
// 功能：根据制动距离和当前速度计算恰好在目标点停住所需的恒定制动力
// 参数：mass-整车质量（千克），v-当前速度（米/秒），
// brakeDistance-制动距离（米），maxBrake-最大制动力（牛）
// 算法说明：运动学公式F=m·v²/(2·d)，钳位到[0, 最大制动力]；
// 距离不为正时直接施加最大制动力
func (a *Action) SetBrakeForce(mass, v, brakeDistance, maxBrake float64) {
	if brakeDistance <= 0 {
		a.Brake = maxBrake
		return
	}
	a.Brake = lo.Clamp(mass*v*v/(2*brakeDistance), 0, maxBrake)
}

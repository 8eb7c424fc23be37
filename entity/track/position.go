package track

import (
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
)

// Position 环形弧长位置
// 功能：表示赛道上以弧长计的位置，取值范围[0, 总长度)
// 说明：所有环绕运算（前进、跨越判定）都通过Track上的方法完成，
// 避免在各调用点重复取模逻辑
type Position float64

// At 归一化弧长位置
// 功能：将任意弧长（可以为负或超过总长）映射到[0, 总长度)
func (t *Track) At(s float64) Position {
	s = math.Mod(s, t.length)
	if s < 0 {
		s += t.length
	}
	return Position(s)
}

// Forward 前进
// 功能：从位置p沿行驶方向前进d米，自动处理环绕
func (t *Track) Forward(p Position, d float64) Position {
	return t.At(float64(p) + d)
}

// ForwardDistance 前向距离
// 功能：计算从from沿行驶方向到to的弧长距离
// 返回：[0, 总长度)范围内的距离
func (t *Track) ForwardDistance(from, to Position) float64 {
	return float64(t.At(float64(to) - float64(from)))
}

// Crossed 跨越判定
// 功能：判断从prev前进到cur的一步是否经过了标记位置mark
// 算法说明：步长与到标记的前向距离都以prev为原点计算，
// 标记落在步长之内即为跨越；原地不动视为未跨越
// 说明：用于防止单步步进越过停车点而漏掉触发
func (t *Track) Crossed(prev, cur, mark Position) bool {
	step := t.ForwardDistance(prev, cur)
	if step <= 0 {
		return false
	}
	return t.ForwardDistance(prev, mark) <= step
}

// SegmentAt 根据弧长位置查找所在段
// 功能：返回位置p所在的段下标
// 算法说明：在累计弧长列表上二分查找；恰好落在段边界时归属后一段
func (t *Track) SegmentAt(p Position) int {
	s := float64(t.At(float64(p)))
	n := len(t.segmentLengths)
	i := sort.SearchFloat64s(t.lineLengths, s)
	var seg int
	if i == 0 || t.lineLengths[i] == s {
		seg = i
	} else {
		seg = i - 1
	}
	if seg >= n {
		seg = 0
	}
	return seg
}

// PointAt 根据弧长位置计算平面坐标
// 功能：返回位置p对应的折线上的平面点
// 算法说明：二分查找所在段后在段内线性插值
func (t *Track) PointAt(p Position) (pos geometry.Point) {
	s := float64(t.At(float64(p)))
	s = lo.Clamp(s, t.lineLengths[0], t.lineLengths[len(t.lineLengths)-1])
	if i := sort.SearchFloat64s(t.lineLengths, s); i == 0 {
		pos = t.line[0]
	} else {
		sHigh, sLow := t.lineLengths[i], t.lineLengths[i-1]
		k := (s - sLow) / (sHigh - sLow)
		if k < 0 || k > 1 {
			log.Panicf("track: PointAt(), bad k %v. sHigh=%f, sLow=%f, s=%f", k, sHigh, sLow, s)
		}
		pos = geometry.Blend(t.line[i-1], t.line[i], k)
	}
	return
}

// DirectionAt 根据弧长位置计算切向角度
func (t *Track) DirectionAt(p Position) geometry.PolylineDirection {
	return t.lineDirections[t.SegmentAt(p)]
}

// LngLatAt 根据弧长位置反投影为经纬度
// 功能：将位置p映射回地理坐标，供外部可视化使用
// 算法说明：等距圆柱投影的逆变换，使用构建时保存的锚点与缩放系数
func (t *Track) LngLatAt(p Position) (lng, lat float64) {
	pos := t.PointAt(p)
	lat = t.anchorLat + pos.Y/earthRadius*180/math.Pi
	lng = t.anchorLng + pos.X/(earthRadius*t.lngScale)*180/math.Pi
	return
}

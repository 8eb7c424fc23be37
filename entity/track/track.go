package track

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils"
)

const (
	// earthRadius 地球半径（米），等距圆柱投影使用
	earthRadius = 6371000
)

// Waypoint 赛道航点
// 功能：表示赛道原始输入中的一个经纬度点
// 说明：仅作为几何处理器的输入，投影后不再使用
type Waypoint struct {
	Lat float64 `json:"lat" bson:"lat"` // 纬度（度）
	Lng float64 `json:"lng" bson:"lng"` // 经度（度）
}

// Straight 直道
// 功能：表示一段连续的非弯道赛段
// 说明：由弯道分类后对非弯道段做环形归并得到，长度恒为正
type Straight struct {
	Index        int      // 直道序号（按环形扫描顺序）
	StartSegment int      // 起始段下标
	EndSegment   int      // 结束段下标（最后一个属于本直道的段）
	Start        Position // 起点弧长位置
	End          Position // 终点弧长位置
	Length       float64  // 直道长度（米）
}

// Track 赛道实体
// 功能：表示一条闭合赛道，包含折线几何、弯道分类与直道划分
// 说明：由航点序列构建一次，此后只读，供全部模拟运行共享
type Track struct {
	line           []geometry.Point             // 闭合折线（末尾重复首点）
	lineLengths    []float64                    // 折线点对应的累计弧长列表
	lineDirections []geometry.PolylineDirection // 每一段的方向（atan2）
	unitDirs       []geometry.Point             // 每一段的单位方向向量
	segmentLengths []float64                    // 每一段的长度
	length         float64                      // 赛道总长度（米）

	corner            []bool     // 每一段的弯道标志
	straights         []Straight // 直道列表
	segmentToStraight []int      // 段下标到直道序号的映射，弯道段为-1

	// 投影参数，用于弧长位置到经纬度的反投影

	anchorLat float64 // 投影锚点纬度（度）
	anchorLng float64 // 投影锚点经度（度）
	lngScale  float64 // 经度缩放系数cos(平均纬度)
}

// New 构建赛道
// 功能：将航点序列转换为带弯道分类与直道划分的闭合赛道模型
// 参数：waypoints-有序航点列表（闭合环），window-弯道判定窗口（段数），
// thresholdDeg-弯道判定角度阈值（度）
// 返回：构建完成的赛道实例；航点不足或几何退化时返回错误
// 算法说明：
// 1. 清洗航点：去掉连续重复点与和首点重合的末点（闭合由折线隐式表达）
// 2. 等距圆柱投影：以首航点为锚点，经度按cos(平均纬度)缩放
// 3. 构建闭合折线并计算累计弧长、每段方向与单位向量
// 4. 弯道分类：比较段(i-w)与段(i+w)（环形下标）单位方向的夹角
// 5. 直道归并：从弯道之后开始环形扫描，把连续非弯道段合并为直道，
//    丢弃长度不为正的归并结果（防护环边界的数值退化）
// 说明：零直道是合法的退化赛道，由调用方决定是否继续
func New(waypoints []Waypoint, window int, thresholdDeg float64) (*Track, error) {
	wps := dedupWaypoints(waypoints)
	if len(wps) < 2 {
		return nil, fmt.Errorf("malformed track: %d usable waypoints, at least 2 required", len(wps))
	}
	if window <= 0 {
		return nil, fmt.Errorf("malformed track: corner window must be positive, got %d", window)
	}

	t := &Track{
		anchorLat: wps[0].Lat,
		anchorLng: wps[0].Lng,
	}
	meanLat := 0.0
	for _, wp := range wps {
		meanLat += wp.Lat
	}
	meanLat /= float64(len(wps))
	t.lngScale = math.Cos(meanLat * math.Pi / 180)

	// 闭合折线：末尾重复首点，使最后一段连接回起点
	t.line = make([]geometry.Point, 0, len(wps)+1)
	for _, wp := range wps {
		t.line = append(t.line, t.project(wp))
	}
	t.line = append(t.line, t.line[0])
	t.lineLengths = geometry.GetPolylineLengths2D(t.line)
	t.length = t.lineLengths[len(t.lineLengths)-1]
	if t.length <= 0 {
		return nil, fmt.Errorf("malformed track: total length is zero")
	}
	t.lineDirections = geometry.GetPolylineDirections(t.line)

	n := len(t.line) - 1
	t.segmentLengths = make([]float64, n)
	t.unitDirs = make([]geometry.Point, n)
	for i := 0; i < n; i++ {
		t.segmentLengths[i] = t.lineLengths[i+1] - t.lineLengths[i]
		d := t.lineDirections[i].Direction
		t.unitDirs[i] = geometry.Point{X: math.Cos(d), Y: math.Sin(d)}
	}

	t.classifyCorners(window, thresholdDeg)
	t.buildStraights()
	return t, nil
}

// project 将航点投影为平面坐标
// 算法说明：等距圆柱投影，x=R·rad(Δ经度)·cos(平均纬度)，y=R·rad(Δ纬度)
func (t *Track) project(wp Waypoint) geometry.Point {
	return geometry.Point{
		X: earthRadius * (wp.Lng - t.anchorLng) * math.Pi / 180 * t.lngScale,
		Y: earthRadius * (wp.Lat - t.anchorLat) * math.Pi / 180,
	}
}

// dedupWaypoints 清洗航点
// 功能：去掉连续重复的航点，以及与首点重合的末点
func dedupWaypoints(waypoints []Waypoint) []Waypoint {
	res := make([]Waypoint, 0, len(waypoints))
	for _, wp := range waypoints {
		if len(res) > 0 && res[len(res)-1] == wp {
			continue
		}
		res = append(res, wp)
	}
	if len(res) > 1 && res[0] == res[len(res)-1] {
		res = res[:len(res)-1]
	}
	return res
}

// classifyCorners 弯道分类
// 功能：为每一段计算弯道标志
// 参数：window-判定窗口（段数），thresholdDeg-角度阈值（度）
// 算法说明：对段i，取环形下标(i-w)与(i+w)处的单位方向向量，
// 夹角=acos(点积钳位到[-1,1])；超过阈值判定为弯道
func (t *Track) classifyCorners(window int, thresholdDeg float64) {
	n := len(t.segmentLengths)
	t.corner = make([]bool, n)
	for i := 0; i < n; i++ {
		a := t.unitDirs[utils.CircularIndex(i-window, n)]
		b := t.unitDirs[utils.CircularIndex(i+window, n)]
		dot := a.X*b.X + a.Y*b.Y
		dot = math.Max(-1, math.Min(1, dot))
		angle := math.Acos(dot) * 180 / math.Pi
		t.corner[i] = angle > thresholdDeg
	}
}

// buildStraights 直道归并
// 功能：环形扫描段数组，把连续非弯道段归并为直道记录
// 算法说明：
// 1. 找到第一个弯道段，从其后一段开始扫描，保证跨起终点线的
//    直道被归并为一条记录
// 2. 全程无弯道时整圈即为唯一直道
// 3. 每条归并结果按段长求和计算长度，不为正的结果丢弃
// 4. 建立段到直道序号的映射，弯道段为-1
func (t *Track) buildStraights() {
	n := len(t.segmentLengths)
	t.straights = make([]Straight, 0)
	t.segmentToStraight = make([]int, n)
	for i := range t.segmentToStraight {
		t.segmentToStraight[i] = -1
	}

	firstCorner := -1
	for i, c := range t.corner {
		if c {
			firstCorner = i
			break
		}
	}
	if firstCorner == -1 {
		// 无弯道，整圈为一条直道
		t.straights = append(t.straights, Straight{
			Index:        0,
			StartSegment: 0,
			EndSegment:   n - 1,
			Start:        0,
			End:          0,
			Length:       t.length,
		})
		for i := range t.segmentToStraight {
			t.segmentToStraight[i] = 0
		}
		return
	}

	runStart := -1
	runLength := 0.0
	flush := func(endSegment int) {
		if runStart == -1 {
			return
		}
		if runLength <= 0 {
			// 环边界上的数值退化，丢弃
			log.Debugf("discard zero-length straight run at segment %d", runStart)
			runStart = -1
			runLength = 0
			return
		}
		idx := len(t.straights)
		start := Position(t.lineLengths[runStart])
		t.straights = append(t.straights, Straight{
			Index:        idx,
			StartSegment: runStart,
			EndSegment:   endSegment,
			Start:        start,
			End:          t.Forward(start, runLength),
			Length:       runLength,
		})
		seg := runStart
		for {
			t.segmentToStraight[seg] = idx
			if seg == endSegment {
				break
			}
			seg = utils.CircularIndex(seg+1, n)
		}
		runStart = -1
		runLength = 0
	}
	prev := -1
	for k := 1; k <= n; k++ {
		i := utils.CircularIndex(firstCorner+k, n)
		if t.corner[i] {
			flush(prev)
		} else {
			if runStart == -1 {
				runStart = i
			}
			runLength += t.segmentLengths[i]
			prev = i
		}
	}
	flush(prev)
}

// TotalLength 赛道总长度（米）
func (t *Track) TotalLength() float64 {
	return t.length
}

// SegmentCount 段数量
func (t *Track) SegmentCount() int {
	return len(t.segmentLengths)
}

// SegmentLength 指定段的长度（米）
func (t *Track) SegmentLength(i int) float64 {
	return t.segmentLengths[i]
}

// IsCorner 指定段是否为弯道段
func (t *Track) IsCorner(i int) bool {
	return t.corner[i]
}

// CornerCount 弯道段数量
func (t *Track) CornerCount() int {
	count := 0
	for _, c := range t.corner {
		if c {
			count++
		}
	}
	return count
}

// Straights 直道列表（只读）
func (t *Track) Straights() []Straight {
	return t.straights
}

// StraightIndex 指定段所属的直道序号，弯道段为-1
func (t *Track) StraightIndex(i int) int {
	return t.segmentToStraight[i]
}

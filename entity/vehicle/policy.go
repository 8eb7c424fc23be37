package vehicle

import (
	"encoding/json"
	"os"

	"github.com/samber/lo"
)

// 基因取值范围
const (
	ThrottleMin = 0.30 // 油门比例下界
	ThrottleMax = 1.00 // 油门比例上界
	PulseMin    = 0.05 // 脉冲比例下界
	PulseMax    = 0.95 // 脉冲比例上界

	// 缺省策略：每条直道70%油门、前40%脉冲
	defaultThrottle = 0.7
	defaultPulse    = 0.4
)

// PolicyEntry 单条直道的控制参数
// 功能：描述车辆在一条直道上的油门行为
// 说明：Throttle为目标电机功率占额定功率的比例；Pulse为直道前段
// 施加油门的比例，超过该比例后滑行
type PolicyEntry struct {
	Throttle float64 // 油门比例，[0.30, 1.00]
	Pulse    float64 // 脉冲比例，[0.05, 0.95]
}

// Policy 行驶策略
// 功能：按直道序号排列的控制参数序列，每条直道一项
// 说明：仅由优化器或文件加载产生修改，模拟器只读
type Policy []PolicyEntry

// DefaultPolicy 构造缺省策略
// 功能：为n条直道生成统一的缺省控制参数
func DefaultPolicy(n int) Policy {
	p := make(Policy, n)
	for i := range p {
		p[i] = PolicyEntry{Throttle: defaultThrottle, Pulse: defaultPulse}
	}
	return p
}

// Clamp 将策略项钳位到合法取值范围
func (e PolicyEntry) Clamp() PolicyEntry {
	return PolicyEntry{
		Throttle: lo.Clamp(e.Throttle, ThrottleMin, ThrottleMax),
		Pulse:    lo.Clamp(e.Pulse, PulseMin, PulseMax),
	}
}

// Vector 策略编码为基因向量
// 功能：将策略展平为长度2k的实数向量，油门与脉冲基因交替排列
// 说明：与PolicyFromVector互逆（取值在合法范围内时）
func (p Policy) Vector() []float64 {
	v := make([]float64, 0, 2*len(p))
	for _, e := range p {
		v = append(v, e.Throttle, e.Pulse)
	}
	return v
}

// PolicyFromVector 基因向量解码为策略
// 功能：将长度2k的实数向量还原为k条直道的策略
// 说明：越界的基因被钳位到合法范围而不是拒绝；向量长度为奇数时
// 视为数据错误
func PolicyFromVector(v []float64) Policy {
	if len(v)%2 != 0 {
		log.Panicf("policy vector length %d is not even", len(v))
	}
	p := make(Policy, len(v)/2)
	for i := range p {
		p[i] = PolicyEntry{Throttle: v[2*i], Pulse: v[2*i+1]}.Clamp()
	}
	return p
}

// GeneBounds 基因取值范围
// 功能：返回向量中第i个基因的合法取值区间
// 说明：偶数位为油门基因，奇数位为脉冲基因
func GeneBounds(i int) (low, high float64) {
	if i%2 == 0 {
		return ThrottleMin, ThrottleMax
	}
	return PulseMin, PulseMax
}

// policyFile 策略文件的JSON结构
// 说明：与外部工具约定的交接格式，每项为[油门, 脉冲]二元组
type policyFile struct {
	Policy [][]float64 `json:"policy"`
}

// LoadPolicyFile 从文件加载策略
// 功能：读取策略JSON文件并与直道数量对齐
// 参数：path-策略文件路径，nStraights-赛道直道数量
// 返回：对齐后的策略
// 算法说明：
// 1. 文件缺失或不可解析时回退为缺省策略并告警
// 2. 条目数与直道数不符时截断或以缺省项补齐并告警
// 3. 全部取值钳位到合法范围
// 说明：文件缺失是正常情况（未经优化直接回放），不视为错误
func LoadPolicyFile(path string, nStraights int) Policy {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warnf("policy file %s not loaded (%v), fall back to default policy", path, err)
		return DefaultPolicy(nStraights)
	}
	var pf policyFile
	if err := json.Unmarshal(data, &pf); err != nil {
		log.Warnf("policy file %s is malformed (%v), fall back to default policy", path, err)
		return DefaultPolicy(nStraights)
	}
	p := make(Policy, 0, nStraights)
	for _, pair := range pf.Policy {
		if len(pair) != 2 {
			log.Warnf("policy file %s has bad entry %v, fall back to default policy", path, pair)
			return DefaultPolicy(nStraights)
		}
		p = append(p, PolicyEntry{Throttle: pair[0], Pulse: pair[1]}.Clamp())
	}
	if len(p) != nStraights {
		log.Warnf("policy file %s has %d entries but track has %d straights, reconciling",
			path, len(p), nStraights)
		for len(p) < nStraights {
			p = append(p, PolicyEntry{Throttle: defaultThrottle, Pulse: defaultPulse})
		}
		p = p[:nStraights]
	}
	return p
}

// SavePolicyFile 将策略写入文件
// 功能：以约定的JSON格式持久化策略
// 返回：写入失败时返回错误
func SavePolicyFile(path string, p Policy) error {
	pf := policyFile{Policy: make([][]float64, 0, len(p))}
	for _, e := range p {
		pf.Policy = append(pf.Policy, []float64{e.Throttle, e.Pulse})
	}
	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// 随机数引擎，包装了golang.org/x/exp/rand，提供了一些常用的随机数生成方法
package randengine

import (
	"flag"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成功能，优化器的全部随机性都经由本引擎
// 说明：基于golang.org/x/exp/rand库，给定种子时生成序列完全确定
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 功能：初始化一个新的随机数引擎实例
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 算法说明：
// 1. 应用种子偏移量：将种子偏移量加到基础种子上
// 2. 创建随机数生成器：使用调整后的种子创建rand.Rand
// 说明：种子偏移量允许在不修改代码的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// PTrue 以指定概率返回true
// 功能：根据给定概率返回布尔值
// 参数：p-返回true的概率（0.0到1.0之间）
// 返回：true或false
// 算法说明：
// 1. 生成随机数：在[0.0, 1.0)范围内生成随机数
// 2. 概率比较：如果随机数小于给定概率则返回true
// 说明：实现伯努利分布，用于交叉与变异的概率判定
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// Float64Range 在指定区间内生成随机浮点数
// 功能：生成[low, high)范围内的均匀分布随机数
// 参数：low-区间下界，high-区间上界
// 返回：[low, high)范围内的随机浮点数
// 说明：用于基因初始化等需要指定取值范围的场景
func (e *Engine) Float64Range(low, high float64) float64 {
	return low + (high-low)*e.Float64()
}

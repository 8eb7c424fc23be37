package utils

// 环形数组下标归一化。
// 对长度为n的环形数组，将任意整数下标i（可以为负）
// 映射到[0, n)范围内。
func CircularIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

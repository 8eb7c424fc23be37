package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/container"
)

func TestPriorityQueueHeapOps(t *testing.T) {
	q := container.NewPriorityQueue[string]()
	assert.Equal(t, 0, q.Len())

	q.HeapPush("c", 3)
	q.HeapPush("a", 1)
	q.HeapPush("b", 2)
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, "a", q.First())

	v, p := q.HeapPop()
	assert.Equal(t, "a", v)
	assert.Equal(t, 1.0, p)
	v, _ = q.HeapPop()
	assert.Equal(t, "b", v)
	v, _ = q.HeapPop()
	assert.Equal(t, "c", v)
	assert.Equal(t, 0, q.Len())
}

func TestPriorityQueuePushHeapify(t *testing.T) {
	// 批量Push后必须Heapify一次才能建立堆序
	q := container.NewPriorityQueue[int]()
	for i, p := range []float64{5, 1, 4, 2, 3} {
		q.Push(i, p)
	}
	q.Heapify()

	order := []int{}
	for q.Len() > 0 {
		v, _ := q.HeapPop()
		order = append(order, v)
	}
	assert.Equal(t, []int{1, 3, 4, 2, 0}, order)
}

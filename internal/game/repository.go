package game

import "sync"

// 对局记录采用追加队列：请求侧只入队，备份调度器批量落盘。
// 与user仓库一样采用"取走-失败归还"协议。

var (
	queueMutex  sync.Mutex
	queue       []Record
	flushSignal = make(chan struct{}, 1)
)

// FlushSignal 返回入队通知channel，仅供备份调度器消费。
func FlushSignal() <-chan struct{} {
	return flushSignal
}

// enqueue 将一条对局记录加入待落盘队列
func enqueue(record Record) {
	queueMutex.Lock()
	queue = append(queue, record)
	queueMutex.Unlock()

	select {
	case flushSignal <- struct{}{}:
	default:
	}
}

// CollectPendingRecords 取走当前全部待落盘记录并清空队列。
func CollectPendingRecords() []Record {
	queueMutex.Lock()
	defer queueMutex.Unlock()
	pending := queue
	queue = nil
	return pending
}

// RestorePendingRecords 在落盘失败后把记录放回队首，保持时间顺序。
func RestorePendingRecords(records []Record) {
	if len(records) == 0 {
		return
	}
	queueMutex.Lock()
	defer queueMutex.Unlock()
	queue = append(records, queue...)
}

// PendingCount 返回待落盘记录数
func PendingCount() int {
	queueMutex.Lock()
	defer queueMutex.Unlock()
	return len(queue)
}

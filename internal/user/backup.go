package user

// 本文件提供备份调度器与仓库之间的增量交接。
// 交接采用"取走-失败归还"协议：调度器取走增量后负责落盘，
// 落盘失败时归还ID，让下一轮重试。

// PendingChanges 是一次快照交接中取走的增量
type PendingChanges struct {
	// Upserts 是需要写入或覆盖的用户持久化记录
	Upserts []User
	// RemovedIDs 是需要从快照库删除的用户ID
	RemovedIDs []string
}

// Empty 判断增量是否为空
func (c *PendingChanges) Empty() bool {
	return len(c.Upserts) == 0 && len(c.RemovedIDs) == 0
}

// CollectPendingChanges 取走当前全部待落盘增量并清空标记。
// 取走与清空在同一个临界区内完成，不会丢失并发变更。
func CollectPendingChanges() PendingChanges {
	repoMutex.Lock()
	defer repoMutex.Unlock()

	r := globalRepository
	changes := PendingChanges{}

	for id := range r.dirty {
		p, ok := r.users[id]
		if !ok {
			continue
		}
		changes.Upserts = append(changes.Upserts, p.toModel())
	}
	for id := range r.removed {
		changes.RemovedIDs = append(changes.RemovedIDs, id)
	}

	r.dirty = make(map[string]struct{})
	r.removed = make(map[string]struct{})
	return changes
}

// RestorePendingChanges 在落盘失败后归还增量标记。
// 只归还ID：若用户在失败窗口内又发生了变更，新状态自然覆盖旧的。
func RestorePendingChanges(changes PendingChanges) {
	repoMutex.Lock()
	defer repoMutex.Unlock()

	r := globalRepository
	for _, u := range changes.Upserts {
		// 失败期间被删除的用户不再回标
		if _, ok := r.users[u.ID]; ok {
			r.dirty[u.ID] = struct{}{}
		}
	}
	for _, id := range changes.RemovedIDs {
		if _, ok := r.users[id]; !ok {
			r.removed[id] = struct{}{}
		}
	}
}

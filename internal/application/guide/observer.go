package guide

import "repair-guide-api/internal/domain/entity"

// Progress 一次状态迁移的进度通知
type Progress struct {
	State   entity.GenerationState `json:"state"`
	Message string                 `json:"message"`
}

// ProgressObserver 进度观察者，在每次迁移时同步调用
type ProgressObserver interface {
	OnProgress(p Progress)
}

// ProgressFunc 函数适配器
type ProgressFunc func(p Progress)

func (f ProgressFunc) OnProgress(p Progress) { f(p) }

type nopObserver struct{}

func (nopObserver) OnProgress(Progress) {}

func observerOrNop(o ProgressObserver) ProgressObserver {
	if o == nil {
		return nopObserver{}
	}
	return o
}

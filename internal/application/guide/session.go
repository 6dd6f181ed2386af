package guide

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"repair-guide-api/internal/domain/entity"
	apperrors "repair-guide-api/pkg/errors"
	"repair-guide-api/pkg/logger"
)

// GenerationGuard 跨实例的在途生成互斥
type GenerationGuard interface {
	// Acquire 成功时返回持有令牌；已被占用时返回 false
	Acquire(ctx context.Context, key, token string) (bool, error)
	// Release 仅当令牌匹配时释放
	Release(ctx context.Context, key, token string) error
}

// Generator 指南生成能力
type Generator interface {
	Generate(ctx context.Context, report *entity.DamageReport, observer ProgressObserver) (*entity.RepairGuide, error)
}

// MemoryGuard 进程内 GenerationGuard
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]string
}

// NewMemoryGuard 创建进程内互斥
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]string)}
}

func (g *MemoryGuard) Acquire(_ context.Context, key, token string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[key]; ok {
		return false, nil
	}
	g.held[key] = token
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[key] == token {
		delete(g.held, key)
	}
	return nil
}

// Snapshot 会话当前状态
type Snapshot struct {
	State  entity.GenerationState `json:"state"`
	Status string                 `json:"status"`
	Guide  *entity.RepairGuide    `json:"guide,omitempty"`
	Error  *apperrors.AppError    `json:"error,omitempty"`
}

// Session 单个用户的生成状态机，同一时刻只允许一次生成
type Session struct {
	key       string
	generator Generator
	guard     GenerationGuard

	mu     sync.Mutex
	state  entity.GenerationState
	status string
	guide  *entity.RepairGuide
	err    *apperrors.AppError
	epoch  uint64
	token  string
}

// NewSession 创建会话
func NewSession(key string, generator Generator, guard GenerationGuard) *Session {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	return &Session{
		key:       key,
		generator: generator,
		guard:     guard,
		state:     entity.StateIdle,
		status:    "Idle",
	}
}

// Snapshot 返回当前状态副本
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, Status: s.status, Guide: s.guide, Error: s.err}
}

// Submit 提交一次生成；在途时直接拒绝且不发起任何请求
func (s *Session) Submit(ctx context.Context, report *entity.DamageReport, observer ProgressObserver) (*entity.RepairGuide, error) {
	if err := ValidateReport(report); err != nil {
		return nil, err
	}

	epoch, token, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	observer = observerOrNop(observer)

	tracked := ProgressFunc(func(p Progress) {
		if s.record(epoch, p) {
			observer.OnProgress(p)
		}
	})

	guide, genErr := s.generator.Generate(ctx, report, tracked)
	return s.finish(ctx, epoch, token, guide, genErr)
}

// Reset 回到 Idle，丢弃在途结果，不中断底层网络请求
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	s.epoch++
	token := s.token
	s.token = ""
	s.state = entity.StateIdle
	s.status = "Idle"
	s.guide = nil
	s.err = nil
	s.mu.Unlock()

	if token != "" {
		s.release(ctx, token)
	}
}

func (s *Session) begin(ctx context.Context) (uint64, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.InFlight() {
		return 0, "", apperrors.ErrGenerationInFlight
	}

	token := uuid.NewString()
	ok, err := s.guard.Acquire(ctx, s.key, token)
	if err != nil {
		return 0, "", apperrors.Wrap(err, apperrors.CodeCacheError, "failed to acquire generation guard")
	}
	if !ok {
		return 0, "", apperrors.ErrGenerationInFlight
	}

	s.epoch++
	s.token = token
	s.state = entity.StatePreparing
	s.status = "Preparing request"
	s.guide = nil
	s.err = nil
	return s.epoch, token, nil
}

// record 记录进度，epoch 已过期时返回 false
func (s *Session) record(epoch uint64, p Progress) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return false
	}
	// 终态由 finish 写入
	if p.State != entity.StateComplete && p.State != entity.StateErrored {
		s.state = p.State
	}
	s.status = p.Message
	return true
}

func (s *Session) finish(ctx context.Context, epoch uint64, token string, guide *entity.RepairGuide, genErr error) (*entity.RepairGuide, error) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		logger.Info(ctx, "discarding generation result after reset")
		return nil, apperrors.ErrGenerationReset
	}
	s.token = ""
	if genErr != nil {
		s.state = entity.StateErrored
		s.err = apperrors.AsAppError(genErr)
		s.guide = nil
	} else {
		s.state = entity.StateComplete
		s.guide = guide
		s.err = nil
	}
	s.mu.Unlock()

	s.release(ctx, token)
	if genErr != nil {
		return nil, genErr
	}
	return guide, nil
}

func (s *Session) release(ctx context.Context, token string) {
	// 请求上下文可能已取消，释放使用独立上下文
	if err := s.guard.Release(context.WithoutCancel(ctx), s.key, token); err != nil {
		logger.Warn(ctx, "failed to release generation guard", "error", err.Error())
	}
}

// SessionRegistry 按用户维护会话
type SessionRegistry struct {
	generator Generator
	guard     GenerationGuard

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry 创建会话注册表
func NewSessionRegistry(generator Generator, guard GenerationGuard) *SessionRegistry {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	return &SessionRegistry{
		generator: generator,
		guard:     guard,
		sessions:  make(map[string]*Session),
	}
}

// Get 返回用户会话，不存在时创建
func (r *SessionRegistry) Get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		s = NewSession(userID, r.generator, r.guard)
		r.sessions[userID] = s
	}
	return s
}

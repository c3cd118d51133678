package statemachine

import (
	"fmt"

	"k8s.io/klog/v2"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"
)

// StageTransition 会话阶段迁移
type StageTransition struct {
	From domain.Stage
	To   domain.Stage
}

// StageStateMachine 会话阶段状态机。
// 阶段只能原地停留（追问）或前进一步，done 为终止态。
type StageStateMachine struct {
	allowedTransitions map[StageTransition]bool
}

// NewStageStateMachine 创建阶段状态机
func NewStageStateMachine() *StageStateMachine {
	sm := &StageStateMachine{
		allowedTransitions: make(map[StageTransition]bool),
	}

	// facts -> review -> today_plan -> done
	transitions := []StageTransition{
		// 追问，停留在当前阶段
		{domain.StageFacts, domain.StageFacts},
		{domain.StageReview, domain.StageReview},
		{domain.StageTodayPlan, domain.StageTodayPlan},

		// 追问达到上限后前进
		{domain.StageFacts, domain.StageReview},
		{domain.StageReview, domain.StageTodayPlan},
		{domain.StageTodayPlan, domain.StageDone},

		// 结束后继续回答，保持终止态
		{domain.StageDone, domain.StageDone},
	}

	for _, t := range transitions {
		sm.allowedTransitions[t] = true
	}

	return sm
}

// CanTransition 检查阶段迁移是否合法
func (sm *StageStateMachine) CanTransition(from, to domain.Stage) bool {
	return sm.allowedTransitions[StageTransition{From: from, To: to}]
}

// ValidateTransition 验证阶段迁移并返回错误
func (sm *StageStateMachine) ValidateTransition(from, to domain.Stage) error {
	if !sm.CanTransition(from, to) {
		return &InvalidStageTransitionError{
			From: string(from),
			To:   string(to),
		}
	}
	return nil
}

// Transition 校验阶段迁移（带日志）
func (sm *StageStateMachine) Transition(from, to domain.Stage, sessionID string) error {
	if err := sm.ValidateTransition(from, to); err != nil {
		klog.Warningf("会话阶段迁移被拒绝: sessionID=%s, %s -> %s, error=%v", sessionID, from, to, err)
		return err
	}

	if from != to {
		klog.V(6).Infof("会话阶段迁移: sessionID=%s, %s -> %s", sessionID, from, to)
	}
	return nil
}

// InvalidStageTransitionError 无效的阶段迁移错误
type InvalidStageTransitionError struct {
	From string
	To   string
}

func (e *InvalidStageTransitionError) Error() string {
	return fmt.Sprintf("invalid session stage transition: %s -> %s", e.From, e.To)
}

package domain

// QuestionType 下一问的类型
type QuestionType string

const (
	QuestionFollowUp QuestionType = "follow_up"
	QuestionMain     QuestionType = "main"
	QuestionFinalize QuestionType = "finalize"
)

// Valid 是否为已定义的问题类型
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionFollowUp, QuestionMain, QuestionFinalize:
		return true
	}
	return false
}

// FollowUpLimit 每个阶段最多追问次数，达到后强制进入下一阶段
const FollowUpLimit = 2

// AnswersPerStage 每个阶段收集的用户回答数：FollowUpLimit 次追问 + 1 次进入下一阶段。
// 兜底摘要按这个步长切分回答，改动追问次数时切分会自动跟随。
const AnswersPerStage = FollowUpLimit + 1

const (
	terminalQuestion   = "晨记对话已结束，请调用 finalize 获取 Markdown。"
	completionQuestion = "问题收集完成，准备生成晨记。"
)

var mainQuestions = map[Stage]string{
	StageFacts:     "继续补充：昨天还有哪些关键事实、进展和证据？",
	StageReview:    "复盘一下：昨天做对了什么、做错了什么、今天怎么防止重犯？",
	StageTodayPlan: "今天最重要的 3 件结果导向任务分别是什么？",
}

// followUpQuestions 以追问深度（1 开始）为下标
var followUpQuestions = map[Stage][FollowUpLimit]string{
	StageFacts:     {"这件事的具体进展是什么？", "这件事有什么可验证的证据？"},
	StageReview:    {"你认为背后的根因是什么？", "今天最小可执行的防错动作是什么？"},
	StageTodayPlan: {"每件任务的完成标准是什么？", "最晚完成时间分别是几点？"},
}

// NextQuestion 下一问及其类型
type NextQuestion struct {
	Question string       `json:"nextQuestion"`
	Type     QuestionType `json:"nextQuestionType"`
}

// Transition 一次提问决策的结果：新的阶段、追问计数以及要返回的问题
type Transition struct {
	Stage         Stage
	FollowUpCount int
	Next          NextQuestion
}

// Decide 纯函数：根据当前阶段和追问计数决定下一问，不修改任何状态
func Decide(stage Stage, followUpCount int) Transition {
	if stage == StageDone {
		return Transition{
			Stage:         StageDone,
			FollowUpCount: followUpCount,
			Next:          NextQuestion{Question: terminalQuestion, Type: QuestionFinalize},
		}
	}

	if followUpCount < FollowUpLimit {
		depth := followUpCount + 1
		return Transition{
			Stage:         stage,
			FollowUpCount: depth,
			Next:          NextQuestion{Question: followUpQuestion(stage, depth), Type: QuestionFollowUp},
		}
	}

	next := NextStage(stage)
	if next == StageDone {
		return Transition{
			Stage: StageDone,
			Next:  NextQuestion{Question: completionQuestion, Type: QuestionFinalize},
		}
	}
	return Transition{
		Stage: next,
		Next:  NextQuestion{Question: mainQuestions[next], Type: QuestionMain},
	}
}

// Apply 把决策结果写回会话，是 Stage 和 FollowUpCount 唯一的修改入口
func (t Transition) Apply(s *Session) {
	s.Stage = t.Stage
	s.FollowUpCount = t.FollowUpCount
}

// ComputeNextQuestion 决策并应用到会话上
func ComputeNextQuestion(s *Session) NextQuestion {
	t := Decide(s.Stage, s.FollowUpCount)
	t.Apply(s)
	return t.Next
}

// MainQuestion 阶段的主问题
func MainQuestion(stage Stage) string {
	return mainQuestions[stage]
}

func followUpQuestion(stage Stage, depth int) string {
	qs, ok := followUpQuestions[stage]
	if !ok {
		qs = followUpQuestions[StageTodayPlan]
	}
	if depth < 1 {
		depth = 1
	}
	if depth > FollowUpLimit {
		depth = FollowUpLimit
	}
	return qs[depth-1]
}

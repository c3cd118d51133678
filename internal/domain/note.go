package domain

import (
	"fmt"
	"strings"
)

// 晨记各章节标题
const (
	SectionSleep   = "## 生理状态与睡眠"
	SectionFacts   = "## 昨天的事实与进展（客观 + 证据）"
	SectionReview  = "## 昨天关键复盘（做对/做错/防错）"
	SectionTop3    = "## 今天最重要的 3 件事（结果导向）"
	SectionEvening = "## 晚间复盘"
)

const (
	placeholder      = "待补充"
	emptyFactsLine   = "无"
	reviewSeparator  = "；"
	DefaultSleepAt   = "22:30"
	DefaultWakeAt    = "06:45"
	top3Count        = 3
	eveningQuestions = "- 完成率（0-100）：\n- 未完成项根因（1 条）：\n- 明天第一步（10 分钟可启动）：\n- 今日一句话总结：\n"
)

// NoteInput 渲染晨记所需的结构化内容
type NoteInput struct {
	SleepAt string   `json:"sleepAt"`
	WakeAt  string   `json:"wakeAt"`
	Facts   []string `json:"facts"`
	Review  string   `json:"review"`
	Top3    []string `json:"top3"`
}

// ComposeMorningNote 把结构化内容渲染为固定格式的 Markdown
func ComposeMorningNote(in NoteInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "---\nsleep_at: %s\nwake_at: %s\n---\n\n", in.SleepAt, in.WakeAt)

	sb.WriteString(SectionSleep + "\n")
	fmt.Fprintf(&sb, "- 入睡时间：%s\n- 起床时间：%s\n\n", in.SleepAt, in.WakeAt)

	sb.WriteString(SectionFacts + "\n")
	facts := in.Facts
	if len(facts) == 0 {
		facts = []string{emptyFactsLine}
	}
	for _, f := range facts {
		sb.WriteString("- " + stripBullet(f) + "\n")
	}
	sb.WriteString("\n")

	sb.WriteString(SectionReview + "\n")
	review := in.Review
	if review == "" {
		review = placeholder
	}
	sb.WriteString("- " + review + "\n\n")

	sb.WriteString(SectionTop3 + "\n")
	for i := 0; i < top3Count; i++ {
		item := placeholder
		if i < len(in.Top3) {
			item = in.Top3[i]
		}
		fmt.Fprintf(&sb, "%d. [ ] 结果：%s\n   完成标准：\n   最晚时间：\n", i+1, item)
	}
	sb.WriteString("\n")

	sb.WriteString(SectionEvening + "\n")
	sb.WriteString(eveningQuestions)

	return sb.String()
}

// stripBullet 去掉行首已有的 "-" 标记，避免出现 "- - xxx"
func stripBullet(line string) string {
	if !strings.HasPrefix(line, "-") {
		return line
	}
	return strings.TrimLeft(line[1:], " \t")
}

// ExtractNoteInput 不依赖 LLM，按回答顺序切分出晨记内容。
// 每个阶段对应 AnswersPerStage 条回答：facts、review、today_plan 依次排列。
func ExtractNoteInput(s *Session) NoteInput {
	answers := s.UserAnswers()
	return NoteInput{
		SleepAt: DefaultSleepAt,
		WakeAt:  DefaultWakeAt,
		Facts:   window(answers, 0),
		Review:  strings.Join(window(answers, 1), reviewSeparator),
		Top3:    window(answers, 2),
	}
}

func window(answers []string, stageIndex int) []string {
	start := stageIndex * AnswersPerStage
	end := start + AnswersPerStage
	if start >= len(answers) {
		return []string{}
	}
	if end > len(answers) {
		end = len(answers)
	}
	return append([]string(nil), answers[start:end]...)
}

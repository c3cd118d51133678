package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/config"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/app"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/service"
)

// audioPrefix 以此开头的输入按音频地址处理
const audioPrefix = "audio:"

func chatCmd() *cobra.Command {
	var userID, templateVersion string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run a morning note dialogue in the terminal",
		Long:  "在终端中完成一次晨记对话。输入 audio:<url> 提交语音，输入 :quit 退出。",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Build(cmd.Context(), config.GetConfig(), app.Options{})
			if err != nil {
				return fmt.Errorf("build app: %w", err)
			}
			return runChat(cmd.Context(), a.Dialogue, cmd.InOrStdin(), cmd.OutOrStdout(), userID, templateVersion)
		},
	}
	cmd.Flags().StringVar(&userID, "user", defaultUser(), "user id")
	cmd.Flags().StringVar(&templateVersion, "template", "v1", "template version")
	return cmd
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

// runChat 逐行读取回答直到会话结束，然后输出晨记
func runChat(ctx context.Context, svc *service.DialogueService, in io.Reader, out io.Writer, userID, templateVersion string) error {
	start, err := svc.Start(ctx, userID, templateVersion)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", color.New(color.Bold).Sprint("会话:"), start.SessionID)
	printQuestion(out, start.Question)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, color.GreenString("> "))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == ":quit" {
			return nil
		}

		input := service.AnswerInput{Transcript: line}
		if strings.HasPrefix(line, audioPrefix) {
			input = service.AnswerInput{AudioURL: strings.TrimSpace(strings.TrimPrefix(line, audioPrefix))}
		}

		res, err := svc.Answer(ctx, start.SessionID, input)
		if err != nil {
			if errors.Is(err, service.ErrInvalidInput) {
				fmt.Fprintln(out, color.YellowString("输入无效: %v", err))
				continue
			}
			return err
		}
		if res.NextQuestionType == domain.QuestionFinalize {
			break
		}
		printQuestion(out, res.NextQuestion)
	}

	final, err := svc.Finalize(ctx, start.SessionID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, color.CyanString("晨记 (%s)", final.Source))
	fmt.Fprintln(out, strings.Repeat("─", 40))
	fmt.Fprint(out, final.Markdown)
	return nil
}

func printQuestion(out io.Writer, question string) {
	fmt.Fprintln(out, color.CyanString("%s", question))
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"syntax-quiz/internal/app"
	"syntax-quiz/internal/domain"
	"github.com/spf13/cobra"
)

// NewPlayCmd runs a quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var criteria domain.Criteria
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defaults := cfg.Criteria()
			if criteria.Language == "" {
				criteria.Language = defaults.Language
			}
			if criteria.Difficulty == "" {
				criteria.Difficulty = defaults.Difficulty
			}
			if criteria.Category == "" {
				criteria.Category = defaults.Category
			}
			if err := criteria.Validate(); err != nil {
				return err
			}

			bank, err := loadQuestionBank(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return runPlay(cmd.InOrStdin(), cmd.OutOrStdout(), bank.Filter(criteria), time.Now)
		},
	}
	cmd.Flags().StringVar(&criteria.Language, "language", "", "language filter (All for any)")
	cmd.Flags().StringVar(&criteria.Difficulty, "difficulty", "", "beginner, intermediate, advanced or All")
	cmd.Flags().StringVar(&criteria.Category, "category", "", "category filter (All for any)")
	return cmd
}

const playHelp = "commands: 1-9 answer, n next, p previous, g <k> go to question k, t time, c complete, q quit"

// runPlay drives one session from line-based commands. Every command maps to
// exactly one session operation; the view only renders what the session reports.
func runPlay(in io.Reader, out io.Writer, questions []domain.Question, now func() time.Time) error {
	session, err := app.NewSessionWithClock(questions, now)
	if errors.Is(err, domain.ErrEmptyQuestionSet) {
		fmt.Fprintln(out, "No questions match your current filter selection. Please adjust your filters.")
		return err
	}
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	readLine := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	for {
		fmt.Fprintf(out, "You have %d questions selected. Press Enter to start (q to quit).\n", session.Len())
		line, ok := readLine()
		if !ok || line == "q" {
			return scanner.Err()
		}
		if session, err = session.Start(); err != nil {
			return err
		}
		fmt.Fprintln(out, playHelp)

		for session.Status() == domain.InProgress {
			renderQuestion(out, session)
			line, ok := readLine()
			if !ok {
				return scanner.Err()
			}
			next, quit, err := applyCommand(session, line)
			if quit {
				return nil
			}
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			session = next
		}

		result, err := session.Review()
		if err != nil {
			return err
		}
		renderResult(out, result)

		fmt.Fprintln(out, "Take the quiz again? (r to restart, anything else to quit)")
		line, ok = readLine()
		if !ok || line != "r" {
			return scanner.Err()
		}
		session = session.Reset()
	}
}

func applyCommand(session app.Session, line string) (app.Session, bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return session, false, fmt.Errorf("empty command; %s", playHelp)
	}
	switch cmd := fields[0]; cmd {
	case "q":
		return session, true, nil
	case "n":
		next, err := session.Next()
		return next, false, err
	case "p":
		next, err := session.Previous()
		return next, false, err
	case "c":
		next, err := session.Complete()
		return next, false, err
	case "t":
		return session, false, nil
	case "g":
		if len(fields) != 2 {
			return session, false, fmt.Errorf("usage: g <question number>")
		}
		k, err := strconv.Atoi(fields[1])
		if err != nil {
			return session, false, fmt.Errorf("invalid question number %q", fields[1])
		}
		next, err := session.GoTo(k - 1)
		return next, false, err
	default:
		k, err := strconv.Atoi(cmd)
		if err != nil {
			return session, false, fmt.Errorf("unknown command %q; %s", cmd, playHelp)
		}
		next, err := session.SelectAnswer(k - 1)
		return next, false, err
	}
}

func renderQuestion(out io.Writer, session app.Session) {
	snap := session.Snapshot()
	q := snap.Current
	fmt.Fprintf(out, "\nQuestion %d of %d  [%s, %s, %s]  answered %d/%d (%d%%)  time %s\n",
		snap.CurrentIndex+1, snap.Total, q.Language, q.Difficulty, q.Category,
		snap.Answered, snap.Total, snap.Progress, domain.FormatDuration(snap.Elapsed))
	fmt.Fprintln(out, q.Prompt)
	if q.CodeSnippet != "" {
		for _, line := range strings.Split(q.CodeSnippet, "\n") {
			fmt.Fprintf(out, "    %s\n", line)
		}
	}
	selected := snap.SelectedAnswers[snap.CurrentIndex]
	for i, opt := range q.Options {
		marker := " "
		if i == selected {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %d) %s\n", marker, i+1, opt)
	}
	fmt.Fprint(out, "> ")
}

func renderResult(out io.Writer, result domain.Result) {
	fmt.Fprintf(out, "\n%s\n", result.Message)
	fmt.Fprintf(out, "Score: %d/%d  Accuracy: %d%%  Grade: %s (%s)\n",
		result.Score, result.Total, result.Accuracy, result.Grade, result.Rating)
	fmt.Fprintf(out, "Time: %s  (%ds avg per question)\n",
		domain.FormatDuration(result.Elapsed), int(result.AveragePerQuestion/time.Second))
	fmt.Fprintln(out, "\nQuestion review:")
	for i, item := range result.Items {
		status := "Correct"
		if !item.Correct {
			status = "Incorrect"
		}
		fmt.Fprintf(out, "%d. %s [%s]\n", i+1, item.Question.Prompt, status)
		fmt.Fprintf(out, "   Your answer: %s\n", item.SelectedAnswer)
		if !item.Correct {
			fmt.Fprintf(out, "   Correct answer: %s\n", item.CorrectAnswer)
		}
		fmt.Fprintf(out, "   %s\n", item.Question.Explanation)
	}
}

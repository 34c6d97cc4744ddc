package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"trivia-quiz-client/internal/app"
	"trivia-quiz-client/internal/domain"
)

func newPlayCmd(opts *rootOptions) *cobra.Command {
	var (
		amount     int
		difficulty string
		category   int
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a trivia quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}

			settings := app.NewSettingsStore(cfg.Settings())
			current := settings.Settings()
			if cmd.Flags().Changed("amount") {
				current.QuestionCount = amount
			}
			if cmd.Flags().Changed("difficulty") {
				parsed, ok := domain.ParseDifficulty(difficulty)
				if !ok {
					return fmt.Errorf("unknown difficulty %q", difficulty)
				}
				current.Difficulty = parsed
			}
			if cmd.Flags().Changed("category") {
				current.CategoryID = nil
				if category > 0 {
					current.CategoryID = &category
				}
			}
			settings.Update(current.QuestionCount, current.Difficulty, current.CategoryID)

			p := newPlayer(newQuizService(cfg, log), settings, cmd.InOrStdin(), cmd.OutOrStdout(),
				rand.New(rand.NewSource(time.Now().UnixNano())))
			return p.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&amount, "amount", domain.DefaultQuestionCount, "number of questions (1-50)")
	cmd.Flags().StringVar(&difficulty, "difficulty", string(domain.DifficultyEasy), "any, easy, medium or hard")
	cmd.Flags().IntVar(&category, "category", 0, "category id (0 for any)")
	return cmd
}

var (
	correctColor   = color.New(color.FgGreen, color.Bold)
	incorrectColor = color.New(color.FgRed, color.Bold)
	headerColor    = color.New(color.FgCyan)
)

// player runs quizzes over a line-oriented terminal.
type player struct {
	service  *app.QuizService
	settings *app.SettingsStore
	in       *bufio.Scanner
	out      io.Writer
	rng      *rand.Rand
}

func newPlayer(service *app.QuizService, settings *app.SettingsStore, in io.Reader, out io.Writer, rng *rand.Rand) *player {
	return &player{
		service:  service,
		settings: settings,
		in:       bufio.NewScanner(in),
		out:      out,
		rng:      rng,
	}
}

// Run plays quizzes until the user declines a replay or input ends.
func (p *player) Run(ctx context.Context) error {
	session := app.NewSession("terminal")
	for {
		if err := p.service.StartAndWait(ctx, session, p.settings.Settings()); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			incorrectColor.Fprintln(p.out, "Could not load questions.")
			fmt.Fprintf(p.out, "%v\n", err)
			if !p.confirm("Try again? [y/N] ") {
				return nil
			}
			continue
		}

		if !p.playSession(session) {
			return nil
		}

		summary, ok := app.Results(session)
		if ok {
			fmt.Fprintf(p.out, "\nYou answered %d out of %d questions correctly. (%.0f%%)\n",
				summary.Score, summary.Total, summary.Percent())
		}
		if !p.confirm("Play again? [y/N] ") {
			return nil
		}
	}
}

// playSession walks every question. It returns false if input ran out.
func (p *player) playSession(session *app.Session) bool {
	for {
		question, ok := session.CurrentQuestion()
		if !ok {
			return true
		}

		headerColor.Fprintf(p.out, "\nQuestion %d of %d\n", session.Index()+1, session.QuestionCount())
		fmt.Fprintln(p.out, question.Text)
		options := question.Options(p.rng)
		for i, option := range options {
			fmt.Fprintf(p.out, "  %c) %s\n", 'A'+i, option)
		}

		answer, ok := p.readAnswer(options)
		if !ok {
			return false
		}
		session.SelectAnswer(answer)
		if answer == question.CorrectAnswer {
			correctColor.Fprintln(p.out, "Correct!")
		} else {
			incorrectColor.Fprintf(p.out, "Incorrect. The answer was %s.\n", question.CorrectAnswer)
		}

		if session.IsLastQuestion() {
			if !p.prompt("Finish Quiz [enter] ") {
				return false
			}
			return true
		}
		if !p.prompt("Next Question [enter] ") {
			return false
		}
		session.Advance()
	}
}

// readAnswer accepts an option letter or the option text itself.
func (p *player) readAnswer(options []string) (string, bool) {
	for {
		fmt.Fprint(p.out, "Your answer: ")
		if !p.in.Scan() {
			return "", false
		}
		line := strings.TrimSpace(p.in.Text())
		if len(line) == 1 {
			idx := int(strings.ToUpper(line)[0] - 'A')
			if idx >= 0 && idx < len(options) {
				return options[idx], true
			}
		}
		for _, option := range options {
			if strings.EqualFold(option, line) {
				return option, true
			}
		}
		fmt.Fprintf(p.out, "Pick a letter between A and %c.\n", 'A'+len(options)-1)
	}
}

func (p *player) prompt(text string) bool {
	fmt.Fprint(p.out, text)
	return p.in.Scan()
}

func (p *player) confirm(text string) bool {
	if !p.prompt(text) {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(p.in.Text()))
	return answer == "y" || answer == "yes"
}

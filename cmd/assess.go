package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	assess "github.com/autismart/autismart/internal/assessment"
	"github.com/autismart/autismart/internal/catalog"
	"github.com/autismart/autismart/internal/store"
)

// answersFile is the on-disk form of a completed questionnaire:
//
//	answers:
//	  easy-01: 0
//	  easy-02: 2
//
// Values are zero-based option indexes. JSON is accepted too.
type answersFile struct {
	Answers map[string]int `yaml:"answers" json:"answers"`
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Score questionnaires outside the TUI",
}

var assessScoreCmd = &cobra.Command{
	Use:   "score <answers-file>",
	Short: "Score a completed answers file and print the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		childName, _ := cmd.Flags().GetString("child")
		ctx := cmd.Context()

		d, err := openDeps(ctx, false)
		if err != nil {
			return err
		}
		defer d.Close()

		sess, report, err := scoreFile(d.catalog, args[0])
		if err != nil {
			return err
		}

		if childName != "" {
			child, err := d.findChild(ctx, childName)
			if err != nil {
				return err
			}
			if err := recordSubmission(ctx, d, sess, report, child.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Recorded for %s.\n", child.Name)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

// scoreFile reads an answers file and submits it against c.
func scoreFile(c *catalog.Catalog, path string) (*assess.Session, *assess.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read answers: %w", err)
	}
	var af answersFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return nil, nil, fmt.Errorf("parse answers %s: %w", path, err)
	}

	sess := assess.NewSession(uuid.NewString(), c)
	for id, idx := range af.Answers {
		if _, err := sess.RecordAnswer(id, idx); err != nil {
			return nil, nil, err
		}
	}

	report, err := sess.Submit()
	var incomplete *assess.IncompleteAssessmentError
	if errors.As(err, &incomplete) {
		return nil, nil, fmt.Errorf("%d of %d questions answered; %d still missing",
			incomplete.Answered, incomplete.Total, incomplete.Remaining)
	}
	if err != nil {
		return nil, nil, err
	}
	return sess, report, nil
}

// recordSubmission stores the report the same way the TUI does.
func recordSubmission(ctx context.Context, d *deps, sess *assess.Session, r *assess.Report, childID string) error {
	events := d.store.EventRepo()
	for _, a := range sess.Scorer().Answers() {
		q, _ := d.catalog.Question(a.QuestionID)
		level, _ := d.catalog.LevelOf(a.QuestionID)
		if err := events.AppendAnswerEvent(ctx, store.AnswerEventData{
			SessionID:   sess.ID,
			ChildID:     childID,
			QuestionID:  a.QuestionID,
			Category:    string(q.Category),
			Level:       string(level),
			OptionIndex: a.OptionIndex,
			Score:       a.Score,
		}); err != nil {
			return fmt.Errorf("record answer: %w", err)
		}
	}
	if err := events.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:    sess.ID,
		ChildID:      childID,
		Action:       store.SessionActionSubmit,
		Answered:     r.Result.TotalQuestions,
		TotalScore:   r.Result.TotalScore,
		SupportLevel: string(r.Level),
	}); err != nil {
		return fmt.Errorf("record submission: %w", err)
	}

	rec := r.Activity(childID, 0)
	rec.RecordedAt = time.Now()
	if err := d.sink.Record(ctx, rec); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	logger.Info("assessment recorded from file",
		zap.String("session_id", sess.ID),
		zap.String("child_id", childID),
		zap.String("support_level", string(r.Level)))
	return nil
}

func printReport(w io.Writer, r *assess.Report) {
	fmt.Fprintf(w, "Support level:  %s (%s)\n", r.Level.DisplayName(), r.Level.Description())
	fmt.Fprintf(w, "Score:          %d of %d  (%d%%)\n", r.Result.TotalScore, r.MaxScore(), r.RoundedPercentage())
	fmt.Fprintf(w, "Questions:      %d\n", r.Result.TotalQuestions)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-26s  %6s  %s\n", "Category", "Trend", "")
	fmt.Fprintln(w, strings.Repeat("\u2500", 52))
	for _, c := range catalog.AllCategories() {
		t, ok := r.Trend(c)
		if !ok {
			fmt.Fprintf(w, "%-26s  %6s  %s\n", c.DisplayName(), "-", "not assessed")
			continue
		}
		status := "needs support"
		if t.IsImproving {
			status = "improving"
		}
		fmt.Fprintf(w, "%-26s  %5d%%  %s\n", c.DisplayName(), t.Percentage, status)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Disclaimer)
}

func init() {
	assessScoreCmd.Flags().Bool("json", false, "Print the report as JSON")
	assessScoreCmd.Flags().StringP("child", "c", "", "Record the result for this child")

	assessCmd.AddCommand(assessScoreCmd)
}

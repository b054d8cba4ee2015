package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ceedaragents/cyrus-sub010/classify"
	"github.com/ceedaragents/cyrus-sub010/team"
)

func newScoreCmd() *cobra.Command {
	var (
		title     string
		classFlag string
		threshold int
	)

	cmd := &cobra.Command{
		Use:   "score [description]",
		Short: "Classify a work item and print its complexity score",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := strings.Join(args, " ")

			var class classify.Classification
			if classFlag != "" {
				class = classify.Classification(classFlag)
			} else {
				var err error
				class, err = classify.NewKeywordClassifier().Classify(context.Background(), title, description)
				if err != nil {
					return err
				}
			}

			scorer := team.NewScorer(func(o *team.ScorerOptions) {
				o.Threshold = threshold
			})
			score := scorer.Score(class, description)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "classification: %s\n", class)
			fmt.Fprintf(out, "score:          %d/100\n", score.Score)
			fmt.Fprintf(out, "use team:       %t\n", score.UseTeam)
			if score.UseTeam {
				fmt.Fprintf(out, "team size:      %d\n", score.SuggestedTeamSize)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "work item title used for classification")
	cmd.Flags().StringVar(&classFlag, "classification", "", "skip classification and use this bucket directly")
	cmd.Flags().IntVar(&threshold, "threshold", team.DefaultThreshold, "minimum score for team decomposition")
	return cmd
}

// Package cli implements the stepctl command for previewing submission step ladders.
package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/noah-isme/gema-steps-api/internal/ladderview"
	"github.com/noah-isme/gema-steps-api/internal/steps"
)

// NewRootCommand builds the stepctl command tree.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("STEPCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "stepctl",
		Short:         "Preview submission step ladders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRenderCommand(v))
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func newRenderCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the ladder a student would see",
		Long: `Render computes the progress ladder for one assignment/submission pair
and prints it either as styled text or as JSON.

Omitting --state (or passing --no-submission) renders the ladder for a
student without a submission.`,
		Example: `  stepctl render --state submitted --attempt 2
  stepctl render --state graded --allowed-attempts 1 --collapsed
  stepctl render --draft-ready --locked --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := inputFromConfig(v)
			if err != nil {
				return err
			}
			ladder := steps.Build(in)

			switch output := v.GetString("output"); output {
			case "text", "":
				_, err = fmt.Fprintln(cmd.OutOrStdout(), ladderview.Render(ladder))
			case "json":
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				err = encoder.Encode(ladder)
			default:
				err = fmt.Errorf("unsupported output %q (want text or json)", output)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.String("state", "", "submission state (unsubmitted, submitted, graded)")
	flags.Int("attempt", 1, "current attempt number")
	flags.Int("allowed-attempts", -1, "allowed attempts; negative means unlimited")
	flags.Bool("locked", false, "assignment is locked")
	flags.Bool("draft-ready", false, "submission draft meets the assignment criteria")
	flags.Bool("no-submission", false, "render without a submission")
	flags.Bool("force-lock", false, "force the unavailable ladder")
	flags.Bool("collapsed", false, "render the collapsed summary")
	flags.Bool("next-button-enabled", false, "viewer is using the new attempt control")
	flags.StringP("output", "o", "text", "output format: text or json")
	_ = v.BindPFlags(flags)

	return cmd
}

func inputFromConfig(v *viper.Viper) (steps.Input, error) {
	in := steps.Input{
		Assignment:      steps.Assignment{LockInfo: steps.LockInfo{IsLocked: v.GetBool("locked")}},
		ForceLockStatus: v.GetBool("force-lock"),
		IsCollapsed:     v.GetBool("collapsed"),
		Viewer:          steps.ViewerContext{NextButtonEnabled: v.GetBool("next-button-enabled")},
	}

	if allowed := v.GetInt("allowed-attempts"); allowed >= 0 {
		in.Assignment.AllowedAttempts = &allowed
	}

	state := strings.ToLower(strings.TrimSpace(v.GetString("state")))
	draftReady := v.GetBool("draft-ready")
	if v.GetBool("no-submission") || (state == "" && !draftReady) {
		return in, nil
	}
	if state == "" {
		state = steps.SubmissionUnsubmitted
	}

	attempt := v.GetInt("attempt")
	if attempt < 0 {
		return steps.Input{}, fmt.Errorf("attempt must not be negative")
	}

	in.Submission = &steps.Submission{State: state, Attempt: attempt}
	if draftReady {
		in.Submission.SubmissionDraft = &steps.Draft{MeetsAssignmentCriteria: true}
	}
	return in, nil
}

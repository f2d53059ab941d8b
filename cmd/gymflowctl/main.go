package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/2beens/gymflow/internal/config"
	"github.com/2beens/gymflow/internal/gymflow/gateway"
	gymflowmcp "github.com/2beens/gymflow/internal/gymflow/mcp"
	"github.com/2beens/gymflow/internal/gymflow/progress"
)

const dateLayout = "2006-01-02 15:04"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	env        string
	configPath string
	apiURL     string
	timezone   string
}

// app bundles what the commands need: the remote gateway and the local statistics on top of it.
type app struct {
	gateway  *gateway.Client
	progress *gymflowmcp.ProgressService
	loc      *time.Location
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "gymflowctl",
		Short:         "Inspect the gymflow workout history and progress",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.env, "env", "development", "config environment [prod | production | dev | development]")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "./config.toml", "path for the TOML config file")
	root.PersistentFlags().StringVar(&flags.apiURL, "api", "", "API base URL, overrides api_base_url from the config")
	root.PersistentFlags().StringVar(&flags.timezone, "tz", "", "timezone for calendar days, overrides the config")

	root.AddCommand(newStatsCmd(flags))
	root.AddCommand(newHistoryCmd(flags))
	root.AddCommand(newRoutinesCmd(flags))
	root.AddCommand(newExercisesCmd(flags))
	root.AddCommand(newPreviousCmd(flags))
	root.AddCommand(newBestsCmd(flags))
	return root
}

// loadApp reads the config only when the flags do not already say where the API is.
func loadApp(flags *globalFlags) (*app, error) {
	baseURL := flags.apiURL
	timezone := flags.timezone
	if baseURL == "" {
		cfg, err := config.Load(flags.env, flags.configPath)
		if err != nil {
			return nil, err
		}
		baseURL = cfg.APIBaseURL
		if timezone == "" {
			timezone = cfg.Timezone
		}
	}
	if timezone == "" {
		timezone = config.DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone [%s]: %w", timezone, err)
	}

	client := gateway.NewClient(gateway.ClientParams{
		BaseURL: baseURL,
	})
	return &app{
		gateway:  client,
		progress: gymflowmcp.NewProgressService(client, progress.NewEngine(loc)),
		loc:      loc,
	}, nil
}

func newStatsCmd(flags *globalFlags) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show workout totals and streaks for a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := progress.ParsePeriod(period)
			if err != nil {
				return err
			}
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			stats, err := a.progress.Stats(cmd.Context(), p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "period: %s\n", stats.Period)
			_, _ = fmt.Fprintf(out, "workouts: %d\n", stats.TotalWorkouts)
			_, _ = fmt.Fprintf(out, "total duration: %d min\n", stats.TotalDuration)
			_, _ = fmt.Fprintf(out, "average duration: %d min\n", stats.AverageDuration)
			_, _ = fmt.Fprintf(out, "current streak: %d days\n", stats.CurrentStreak)
			_, _ = fmt.Fprintf(out, "best streak: %d days\n", stats.MaxStreak)
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", string(progress.PeriodWeek), "week | month | all")
	return cmd
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List completed workouts, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			list, err := a.progress.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no workouts")
				return nil
			}
			tw := newTabWriter(cmd.OutOrStdout())
			for _, w := range list {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d min\t%d exercises\n",
					w.ID, w.Date.In(a.loc).Format(dateLayout), w.Name, w.Duration, len(w.Exercises))
			}
			return tw.Flush()
		},
	}
	history.Flags().IntVar(&limit, "limit", gymflowmcp.DefaultHistoryLimit, "max workouts to show")

	history.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a workout from the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			resp, err := a.gateway.DeleteWorkout(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, gateway.ErrNotFound) {
					return fmt.Errorf("workout %s not found", args[0])
				}
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted: %s\n", resp.ID)
			return nil
		},
	})
	return history
}

func newRoutinesCmd(flags *globalFlags) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "routines",
		Short: "List workout routines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			list, err := a.progress.Routines(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no routines")
				return nil
			}
			tw := newTabWriter(cmd.OutOrStdout())
			for _, r := range list {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d min\t%d sets\n",
					r.ID, r.Name, r.Difficulty, r.Category, r.EstimatedDuration, r.TotalSets())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "all | custom | <category>")
	return cmd
}

func newExercisesCmd(flags *globalFlags) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "List the exercise catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			list, err := a.progress.Exercises(cmd.Context(), group)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no exercises")
				return nil
			}
			tw := newTabWriter(cmd.OutOrStdout())
			for _, e := range list {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Name, e.MuscleGroup)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "muscle group, empty for all")
	return cmd
}

func newPreviousCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "previous <exerciseId>",
		Short: "Show the sets of the last workout containing an exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exerciseID := strings.TrimSpace(args[0])
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			prev, err := a.progress.PreviousPerformance(cmd.Context(), exerciseID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if prev == nil {
				_, _ = fmt.Fprintf(out, "no previous performance for %s\n", exerciseID)
				return nil
			}
			_, _ = fmt.Fprintf(out, "%s, %s\n", prev.WorkoutName, prev.Date.In(a.loc).Format(dateLayout))
			for i, s := range prev.Sets {
				done := " "
				if s.Completed {
					done = "x"
				}
				_, _ = fmt.Fprintf(out, "[%s] set %d: %g kg x %d\n", done, i+1, s.Weight, s.Reps)
			}
			return nil
		},
	}
}

func newBestsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "bests",
		Short: "Show the heaviest completed set per exercise",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			bests, err := a.progress.PersonalBests(cmd.Context())
			if err != nil {
				return err
			}
			if len(bests) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no personal bests yet")
				return nil
			}
			tw := newTabWriter(cmd.OutOrStdout())
			for _, b := range bests {
				_, _ = fmt.Fprintf(tw, "%s\t%g kg x %d\t%s\n", b.ExerciseID, b.Weight, b.Reps, b.Date.In(a.loc).Format(dateLayout))
			}
			return tw.Flush()
		},
	}
}

func newTabWriter(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gymops/gymops/cmd/gymops/cli"
)

func main() {
	_ = godotenv.Load()

	var (
		loginPath = envOr("LOGIN_PATH", "/login")
		redisAddr = envOr("REDIS_ADDR", "127.0.0.1:6379")
	)

	root := &cobra.Command{
		Use:           "gymops-routes",
		Short:         "Inspect the console route table and its audit jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&loginPath, "login-path", loginPath, "Login page path (env LOGIN_PATH)")
	root.PersistentFlags().StringVar(&redisAddr, "redis-addr", redisAddr, "Redis address for job commands (env REDIS_ADDR)")

	routesCmd := &cobra.Command{
		Use:   "routes",
		Short: "Route table commands",
	}

	var dumpRole string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the route matrix as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := cli.NewRoutesCLI(loginPath)
			if err != nil {
				return err
			}
			return rc.Dump(cmd.OutOrStdout(), dumpRole)
		},
	}
	dumpCmd.Flags().StringVar(&dumpRole, "role", "", "Only list routes this role may open")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate every route for every role",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := cli.NewRoutesCLI(loginPath)
			if err != nil {
				return err
			}
			return rc.Check(cmd.OutOrStdout())
		},
	}

	var explainRole string
	explainCmd := &cobra.Command{
		Use:   "explain PATH",
		Short: "Show the decision for one role and path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := cli.NewRoutesCLI(loginPath)
			if err != nil {
				return err
			}
			return rc.Explain(cmd.OutOrStdout(), explainRole, args[0])
		},
	}
	explainCmd.Flags().StringVar(&explainRole, "role", "", "Role to evaluate as; empty means signed out")

	routesCmd.AddCommand(dumpCmd, checkCmd, explainCmd)

	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Navigation audit job commands",
	}

	var retention time.Duration
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Enqueue an audit retention run",
		RunE: func(cmd *cobra.Command, args []string) error {
			jc, err := cli.NewJobsCLI(redisAddr)
			if err != nil {
				return err
			}
			defer jc.Close()
			info, err := jc.TriggerPrune(cmd.Context(), retention)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s on %s (id=%s)\n", info.Type, info.Queue, info.ID)
			return nil
		},
	}
	pruneCmd.Flags().DurationVar(&retention, "retention", 2160*time.Hour, "Delete audit rows older than this")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print queue statistics as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			jc, err := cli.NewJobsCLI(redisAddr)
			if err != nil {
				return err
			}
			defer jc.Close()
			stats, err := jc.InspectQueues(cmd.Context())
			if err != nil {
				return err
			}
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(stats)
		},
	}

	cronCmd := &cobra.Command{
		Use:   "cron",
		Short: "List periodic tasks registered by running workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			jc, err := cli.NewJobsCLI(redisAddr)
			if err != nil {
				return err
			}
			defer jc.Close()
			entries, err := jc.CronEntries(cmd.Context())
			if err != nil {
				return err
			}
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(entries)
		},
	}

	jobsCmd.AddCommand(pruneCmd, statsCmd, cronCmd)
	root.AddCommand(routesCmd, jobsCmd)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	err := root.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

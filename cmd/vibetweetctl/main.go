// Command vibetweetctl runs maintenance tasks against the Vibe Tweet database.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vibetweet/internal/bootstrap"
	"vibetweet/internal/config"
	"vibetweet/internal/featureflags"
	"vibetweet/internal/seed"
	"vibetweet/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	verbose bool
	cfg     *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "vibetweetctl",
	Short:   "Vibe Tweet maintenance",
	Long:    "vibetweetctl seeds demo data, recomputes style profiles and inspects trend feeds.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

var (
	seedUsers   int
	seedTweets  int
	seedValue   int64
	seedMaxDays int
	seedAnalyze bool

	analyzeUser string
	analyzeAll  bool
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	seedCmd.Flags().IntVar(&seedUsers, "users", 10, "Number of users to create")
	seedCmd.Flags().IntVar(&seedTweets, "tweets", 25, "Tweets imported per user")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "Random seed (0 picks one)")
	seedCmd.Flags().IntVar(&seedMaxDays, "days", 90, "Spread tweet timestamps over this many past days")
	seedCmd.Flags().BoolVar(&seedAnalyze, "analyze", true, "Compute style profiles after importing")

	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "User ID to analyze")
	analyzeCmd.Flags().BoolVar(&analyzeAll, "all", false, "Analyze every user")
	analyzeCmd.MarkFlagsMutuallyExclusive("user", "all")
	analyzeCmd.MarkFlagsOneRequired("user", "all")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(trendsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("vibetweetctl", version)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo users with generated tweet history",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices()
		if err != nil {
			return err
		}

		summary, err := seed.Run(cmd.Context(), svc.SeedTargets(), seed.Options{
			NumUsers:      seedUsers,
			TweetsPerUser: seedTweets,
			Seed:          seedValue,
			MaxDays:       seedMaxDays,
			Analyze:       seedAnalyze,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Created %d users, imported %d tweets (%d skipped), built %d profiles\n",
			len(summary.UserIDs), summary.Imported, summary.Skipped, summary.Profiles)
		for _, id := range summary.UserIDs {
			fmt.Printf("  %s\n", id)
		}
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Recompute style profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if analyzeUser != "" {
			id, err := uuid.Parse(analyzeUser)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", analyzeUser, err)
			}
			return analyzeOne(ctx, svc.Styles, id)
		}

		const page = 100
		analyzed := 0
		for offset := 0; ; offset += page {
			users, err := svc.Users.ListUsers(ctx, page, offset)
			if err != nil {
				return err
			}
			for _, u := range users {
				if err := analyzeOne(ctx, svc.Styles, u.ID); err != nil {
					return err
				}
				analyzed++
			}
			if len(users) < page {
				break
			}
		}
		fmt.Printf("Analyzed %d users\n", analyzed)
		return nil
	},
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Fetch and print the merged trend list",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{}); err != nil {
			return err
		}
		svc := bootstrap.NewTrendService(cfg, featureflags.NewManager(cfg.FeatureFlags))
		if names := svc.Sources(); len(names) == 0 {
			fmt.Println("No trend feeds configured (TREND_FEED_URLS)")
			return nil
		}

		list, err := svc.Current(cmd.Context())
		if err != nil {
			return err
		}
		for i, t := range list {
			fmt.Printf("%2d. %s\n", i+1, t)
		}
		return nil
	},
}

func openServices() (*bootstrap.Services, error) {
	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return bootstrap.NewServices(cfg, db, bootstrap.Deps{}), nil
}

func analyzeOne(ctx context.Context, styles *service.StyleService, id uuid.UUID) error {
	profile, err := styles.Recompute(ctx, id, service.TriggerCLI)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", id, err)
	}
	if profile == nil {
		fmt.Printf("%s: no tweets, profile cleared\n", id)
		return nil
	}
	fmt.Printf("%s: %d tweets analyzed\n", id, profile.TweetCount)
	return nil
}

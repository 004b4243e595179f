package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"semgate/internal/config"
	"semgate/internal/crawler"
	"semgate/internal/git"
	"semgate/internal/report"
	"semgate/internal/rules"
	"semgate/internal/storage"
	"semgate/internal/verify"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "semgate",
		Short: "Semantic equivalence gate for source-to-source transformations",
	}
	configPath string
	dbPath     string
	noHistory  bool
	gitBase    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "semgate.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the run history database (SQLite), overrides config")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "Skip persisting results to the history database")

	verifyCmd.Flags().StringVar(&gitBase, "git-base", "", "Read the baseline from this git revision instead of a file")
	batchCmd.Flags().StringVar(&gitBase, "git-base", "", "Verify every changed artifact against this git revision")

	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to show")
}

// initVerifier loads configuration and builds the verification engine.
// Configuration problems are usage errors, not verification failures.
func initVerifier() (*verify.Verifier, *config.Config) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("❌ Configuration error: %v\n", err)
		os.Exit(2)
	}

	v, err := verify.New(cfg.VerifierOptions())
	if err != nil {
		fmt.Printf("❌ Configuration error: %v\n", err)
		os.Exit(2)
	}

	return v, cfg
}

func historyStore(cfg *config.Config) *storage.SQLiteStore {
	if noHistory {
		return nil
	}
	path := cfg.History.Path
	if dbPath != "" {
		path = dbPath
	}
	store, err := storage.NewSQLiteStore(path)
	if err != nil {
		log.Printf("⚠️  History disabled, failed to open %s: %v", path, err)
		return nil
	}
	return store
}

var verifyCmd = &cobra.Command{
	Use:   "verify <baseline> <candidate>",
	Short: "Verify that a transformed artifact preserves its baseline's semantics",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Load the pair
		var baselineID, candidatePath string
		var baselineSource []byte
		var err error

		if gitBase != "" {
			// With --git-base the single argument names the working-tree
			// candidate and the baseline is the same path at the revision.
			candidatePath = args[0]
			if len(args) > 1 {
				candidatePath = args[1]
			}
			baselineID = gitBase + ":" + filepath.ToSlash(candidatePath)
			baselineSource, err = git.ShowFile(".", gitBase, filepath.ToSlash(candidatePath))
			if err != nil {
				log.Fatalf("Failed to load baseline from git: %v", err)
			}
		} else {
			if len(args) != 2 {
				fmt.Println("❌ verify needs <baseline> <candidate> paths (or --git-base with one path)")
				os.Exit(2)
			}
			baselineID = filepath.ToSlash(args[0])
			candidatePath = args[1]
			baselineSource, err = os.ReadFile(args[0])
			if err != nil {
				log.Fatalf("Failed to read baseline: %v", err)
			}
		}

		candidateSource, err := os.ReadFile(candidatePath)
		if err != nil {
			log.Fatalf("Failed to read candidate: %v", err)
		}

		// 2. Run verification
		v, cfg := initVerifier()
		defer v.Close()
		pair := verify.Pair{
			Baseline:  verify.Artifact{ID: baselineID, Source: baselineSource},
			Candidate: verify.Artifact{ID: filepath.ToSlash(candidatePath), Source: candidateSource},
		}

		start := time.Now()
		rep, err := v.VerifyPair(ctx, pair)
		if err != nil {
			log.Fatalf("Verification failed: %v", err)
		}
		report.Render(os.Stdout, rep)
		fmt.Printf("⏱  Verified in %v\n", time.Since(start).Round(time.Millisecond))

		// 3. Persist to history
		if store := historyStore(cfg); store != nil {
			defer store.Close()
			if _, err := store.SaveReport(ctx, rep); err != nil {
				log.Printf("⚠️  Failed to save run: %v", err)
			}
		}

		if !rep.Passed() {
			os.Exit(1)
		}
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <baseline-dir> <candidate-dir>",
	Short: "Verify every artifact pair between two directory trees",
	Args:  cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Discover pairs, either by relative path across two trees or
		// from the git diff against a base revision
		var pairing *crawler.Pairing
		var err error

		if gitBase != "" {
			pairing, err = gitPairing(gitBase)
			if err != nil {
				log.Fatalf("Pair discovery failed: %v", err)
			}
		} else {
			if len(args) != 2 {
				fmt.Println("❌ batch needs <baseline-dir> <candidate-dir> (or --git-base)")
				os.Exit(2)
			}
			fmt.Printf("📂 Pairing artifacts: %s ↔ %s\n", args[0], args[1])
			pairing, err = crawler.NewCrawler().DiscoverPairs(args[0], args[1])
			if err != nil {
				log.Fatalf("Pair discovery failed: %v", err)
			}
		}

		for _, rel := range pairing.BaselineOnly {
			fmt.Printf("⚠️  Baseline only (missing from candidate tree): %s\n", rel)
		}
		for _, rel := range pairing.CandidateOnly {
			fmt.Printf("⚠️  Candidate only (no baseline to verify against): %s\n", rel)
		}
		if len(pairing.Pairs) == 0 {
			fmt.Println("❌ No artifact pairs found.")
			os.Exit(2)
		}

		// 2. Run the batch
		v, cfg := initVerifier()
		defer v.Close()
		fmt.Printf("🚀 Verifying %d pairs...\n", len(pairing.Pairs))
		start := time.Now()

		batch, crossResult, err := v.VerifyBatch(ctx, pairing.Pairs)
		if err != nil {
			log.Fatalf("Batch verification failed: %v", err)
		}

		report.RenderBatch(os.Stdout, batch)
		renderCrossIssues(crossResult)
		fmt.Printf("⏱  Batch verified in %v\n", time.Since(start).Round(time.Millisecond))

		// 3. Persist to history
		if store := historyStore(cfg); store != nil {
			defer store.Close()
			if err := store.SaveBatch(ctx, batch); err != nil {
				log.Printf("⚠️  Failed to save batch: %v", err)
			}
		}

		if !batch.Passed() || hasErrorIssue(crossResult) || len(pairing.BaselineOnly) > 0 {
			os.Exit(1)
		}
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the built-in validation rules",
	Run: func(cmd *cobra.Command, args []string) {
		for _, rule := range rules.BuiltinRules() {
			state := "on"
			if !rule.EnabledByDefault {
				state = "off"
			}
			scope := "per-artifact"
			if rule.CrossArtifact {
				scope = "cross-artifact"
			}
			fmt.Printf("%-24s %-8s %-4s %-14s %s\n",
				rule.ID, rule.Severity, state, scope, strings.Join(rule.Categories, ","))
		}
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent verification runs",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("❌ Configuration error: %v\n", err)
			os.Exit(2)
		}

		path := cfg.History.Path
		if dbPath != "" {
			path = dbPath
		}
		store, err := storage.NewSQLiteStore(path)
		if err != nil {
			log.Fatalf("Failed to open history database %s: %v", path, err)
		}
		defer store.Close()

		runs, err := store.ListRuns(context.Background(), historyLimit)
		if err != nil {
			log.Fatalf("Failed to list runs: %v", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return
		}

		for _, run := range runs {
			status := "✗"
			if run.Preserved {
				status = "✓"
			}
			if run.ParseError != "" {
				status = "⊘"
			}
			fmt.Printf("%s #%d %s → %s  score=%.1f  %s\n",
				status, run.ID, run.BaselineID, run.CandidateID, run.Score,
				run.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	},
}

// gitPairing pairs each changed working-tree artifact with its content at
// the base revision.
func gitPairing(baseRef string) (*crawler.Pairing, error) {
	changed, err := git.ChangedArtifacts(".", baseRef)
	if err != nil {
		return nil, err
	}

	fmt.Printf("📂 %d changed artifacts against %s\n", len(changed), baseRef)

	pairing := &crawler.Pairing{}
	for _, path := range changed {
		baseline, err := git.ShowFile(".", baseRef, path)
		if err != nil {
			// New in the working tree, nothing to verify against
			pairing.CandidateOnly = append(pairing.CandidateOnly, path)
			continue
		}
		candidate, err := os.ReadFile(filepath.FromSlash(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		pairing.Pairs = append(pairing.Pairs, verify.Pair{
			Baseline:  verify.Artifact{ID: baseRef + ":" + path, Source: baseline},
			Candidate: verify.Artifact{ID: path, Source: candidate},
		})
	}
	return pairing, nil
}

func renderCrossIssues(result *rules.Result) {
	if result == nil || len(result.Issues) == 0 {
		return
	}
	fmt.Println("\nCross-artifact issues:")
	for _, issue := range result.Issues {
		fmt.Printf("  [%s] %s: %s\n", issue.Severity, issue.RuleID, issue.Message)
	}
}

func hasErrorIssue(result *rules.Result) bool {
	if result == nil {
		return false
	}
	for _, issue := range result.Issues {
		if issue.Severity == rules.SeverityError {
			return true
		}
	}
	return false
}

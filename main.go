//
// Quern checks the export files a proof assistant emits: it reads the
// low-level declarations back in, type-checks every one of them from scratch
// against a tiny kernel, and accepts or rejects the whole stream. Nothing
// about the exporter is trusted except the grammar of its output.
//

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quern-dev/quern/source/certify"
	"github.com/quern-dev/quern/source/env"
	"github.com/quern-dev/quern/source/parser"
	"github.com/quern-dev/quern/source/pretty"
	"github.com/quern-dev/quern/source/repl"
	"github.com/quern-dev/quern/source/text"
)

var (
	flagThreads     int
	flagLookahead   int
	flagPrint       bool
	flagInteractive bool
	flagVerbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "quern <export-file> ...",
	Short: "An independent checker for proof-kernel export files",
	Long: "Quern re-checks every declaration in the given export files against its own\n" +
		"kernel. A run either certifies the whole stream or reports the first\n" +
		"declaration that fails and why.",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().IntVarP(&flagThreads, "threads", "t", 1, "worker count; 1 checks strictly in stream order")
	rootCmd.Flags().IntVar(&flagLookahead, "lookahead", 1024, "how far registration may run ahead of the slowest check")
	rootCmd.Flags().BoolVarP(&flagPrint, "print", "p", false, "pretty-print every declaration after a successful check")
	rootCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "drop into the inspector after a successful check")
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "log each declaration as it is certified")
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger(flagVerbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	e := env.New()
	items, err := parseFiles(e, args)
	if err != nil {
		fmt.Println(text.BROKEN + err.Error())
		return err
	}
	logger.Info("parsed", zap.Int("items", len(items)), zap.Int("files", len(args)))

	cert := certify.New(e, logger)
	cert.Threads = flagThreads
	cert.Lookahead = flagLookahead

	start := time.Now()
	if err := cert.Check(items); err != nil {
		logger.Error("rejected", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		fmt.Println(text.BROKEN + err.Error())
		return err
	}
	logger.Info("certified",
		zap.Int("declarations", e.Len()),
		zap.Int("threads", flagThreads),
		zap.Duration("elapsed", time.Since(start)))
	fmt.Println(text.GOOD_BULLET + fmt.Sprintf("certified %d declaration(s) in %v", e.Len(), time.Since(start).Round(time.Millisecond)))

	if flagPrint {
		pr := pretty.New(e)
		for _, n := range e.Order() {
			if d, ok := e.Lookup(n); ok {
				fmt.Println(text.BULLET + pr.Declaration(d))
			}
		}
	}
	if flagInteractive {
		repl.Start(e, os.Stdout)
	}
	return nil
}

func parseFiles(e *env.Env, paths []string) ([]env.Item, error) {
	var items []env.Item
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		p := parser.New(e)
		err = p.Parse(f, func(item env.Item) error {
			items = append(items, item)
			return nil
		})
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return items, nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	fmt.Print(text.Logo())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

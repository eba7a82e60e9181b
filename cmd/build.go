package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/duffleit/quill/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the site once",
	Long: `The build command reads Markdown posts from the content directory,
renders them through the layouts, and writes the finished site to the
output directory. Per-file problems are reported at the end of the run
without aborting it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild()
	},
}

func runBuild() error {
	report, err := site.NewBuilder(appConfig, logger).Build()
	if err != nil {
		return err
	}

	report.Log(logger)
	if !report.Clean() {
		return fmt.Errorf("build finished with %d skipped file(s)", len(report.Errors))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

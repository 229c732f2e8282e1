package main

import (
	"os"

	"github.com/eprbell/rp2go/internal/docs"
	"github.com/spf13/cobra"
)

func init() {
	docsCmd.AddCommand(docsCheckCmd)
	rootCmd.AddCommand(docsCmd)
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Documentation tooling",
}

var docsCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check FAQ document structure",
	Long: `Check an FAQ document: every table-of-contents entry must resolve to
a question heading, every question must be referenced exactly once, and
no answer may be empty or a placeholder.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocsCheck,
}

// DocsCheckResult is the response for the docs check command.
type DocsCheckResult struct {
	Status string       `json:"status"`
	File   string       `json:"file"`
	Issues []docs.Issue `json:"issues"`
}

func runDocsCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	issues, err := docs.CheckFile(path)
	if err != nil {
		exitWithError(ExitError, "checking %s: %v", path, err)
	}

	result := DocsCheckResult{Status: "ok", File: path, Issues: issues}
	if len(issues) > 0 {
		result.Status = "issues_found"
	}

	if humanOutput {
		outputHuman("%s: %d issues\n", path, len(issues))
		for _, issue := range issues {
			outputHuman("  line %d: [%s] %s\n", issue.Line, issue.Type, issue.Anchor)
		}
	} else if err := outputJSON(result); err != nil {
		return err
	}

	if len(issues) > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}

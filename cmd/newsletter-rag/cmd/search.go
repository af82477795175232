package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"newsletter-rag/internal/rag"
)

var (
	searchTopK       int
	searchNewsletter string
)

var searchCmd = &cobra.Command{
	Use:   "search [question]",
	Short: "Search indexed newsletter content",
	Long: `Searches the vector collection for content relevant to a question.

With a question argument the search runs once and prints the results. Without
one, on a terminal, an interactive prompt opens instead.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchTopK, "top-k", rag.DefaultTopK, "number of results to return")
	searchCmd.Flags().StringVar(&searchNewsletter, "newsletter", "", "restrict results to one newsletter")

	rootCmd.AddCommand(searchCmd)
}

var (
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	sourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	contentStyle = lipgloss.NewStyle().PaddingLeft(2)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	logger := newLogger()

	stack, err := buildRAGStack(cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	retriever := stack.retriever(logger)

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("a question argument is required when not running on a terminal")
		}
		return runInteractive(cmd.Context(), retriever, stack.store)
	}

	chunks, err := retriever.Retrieve(cmd.Context(), question, searchTopK, searchNewsletter)
	if err != nil {
		return err
	}

	if len(chunks) == 0 {
		cmd.Println("No relevant newsletter content found.")
		return nil
	}

	cmd.Println(renderChunks(chunks))
	return nil
}

// renderChunks formats search hits for terminal output.
func renderChunks(chunks []rag.Chunk) string {
	var b strings.Builder

	for i, chunk := range chunks {
		if i > 0 {
			b.WriteString("\n")
		}

		name, _ := chunk.Metadata["newsletter_name"].(string)
		subject, _ := chunk.Metadata["subject"].(string)
		url, _ := chunk.Metadata["primary_url"].(string)

		b.WriteString(scoreStyle.Render(fmt.Sprintf("%.3f", chunk.Score)))
		b.WriteString(" ")
		b.WriteString(sourceStyle.Render(fmt.Sprintf("[%s] %s", name, subject)))
		b.WriteString("\n")

		if url != "" {
			b.WriteString(faintStyle.Render("  " + url))
			b.WriteString("\n")
		}

		b.WriteString(contentStyle.Render(truncate(chunk.Content, 400)))
		b.WriteString("\n")
	}

	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

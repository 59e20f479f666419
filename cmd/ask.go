package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/orchestrator"
)

var (
	topK      int
	stateless bool
	rebuild   bool
	verbose   bool
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F780FF")). // Bright pink
			Bold(true)

	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD")). // Cyan
			Italic(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E9E9F4")) // Light purple/white

	contextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4")). // Muted purple
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")). // Red
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B")) // Green
)

var askCmd = &cobra.Command{
	Use:   "ask [character] [question]",
	Short: "Ask a historical character a single question",
	Long: `Ask a natural language question and receive an answer in the character's voice.

This command:
1. Fetches the character's Wikipedia article (first question only)
2. Chunks and embeds the article into a retrieval index
3. Retrieves the passages most relevant to your question
4. Generates an in-character answer using an LLM (OpenAI)

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings and LLM
  MILVUS_ADDRESS     - Milvus server address (only with CHAT_VECTOR_BACKEND=milvus)

Examples:
  hakawati ask "صلاح الدين الأيوبي" "أين ولدت؟"
  hakawati ask "عمر بن الخطاب" "كيف توليت الخلافة؟" --topk 4
  hakawati ask "ابن سينا" "ما أشهر كتبك؟" --stateless --verbose`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().IntVar(&topK, "topk", 0, "Number of passages retrieved per question (0 = configured default)")
	askCmd.Flags().BoolVar(&stateless, "stateless", false, "Answer without reading or recording conversation memory")
	askCmd.Flags().BoolVar(&rebuild, "rebuild", false, "Force rebuilding the character's knowledge index")
	askCmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed progress")
}

func runAsk(cmd *cobra.Command, args []string) error {
	character := args[0]
	question := args[1]
	ctx := context.Background()

	cfg, err := orchestrator.LoadConfig()
	if err != nil {
		return err
	}
	if topK > 0 {
		cfg.TopK = topK
	}
	if stateless {
		cfg.Stateless = true
	}

	if verbose {
		fmt.Println(contextStyle.Render("→ Initializing pipeline..."))
	}
	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	defer p.Close()

	if rebuild {
		if verbose {
			fmt.Println(contextStyle.Render("→ Discarding existing index..."))
		}
		if err := p.chat.Rebuild(ctx, character); err != nil {
			return fmt.Errorf("%s Failed to discard index: %w", errorStyle.Render("Error:"), err)
		}
	}

	fmt.Println()
	fmt.Println(headerStyle.Render(character))
	fmt.Println(questionStyle.Render(question))
	fmt.Println()

	if verbose {
		fmt.Println(contextStyle.Render("→ Retrieving context and generating answer..."))
	}
	answer, err := p.chat.Ask(ctx, character, question)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println(headerStyle.Render("Answer:"))
	fmt.Println()
	fmt.Println(answerStyle.Render(strings.TrimSpace(answer.Text)))
	fmt.Println()

	if len(answer.Sources) > 0 {
		fmt.Println(contextStyle.Render("Sources: " + strings.Join(answer.Sources, ", ")))
		fmt.Println()
	}
	if verbose {
		fmt.Println(successStyle.Render("✓ Done"))
	}

	return nil
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/orchestrator"
)

var chatCmd = &cobra.Command{
	Use:   "chat [character]",
	Short: "Hold an interactive conversation with a historical character",
	Long: `Start an interactive session with a historical character.

Questions are read from stdin, one per line. The conversation is remembered
across sessions for the same --user. Type /reset to clear the conversation,
or /quit (or Ctrl-D) to leave.

Examples:
  hakawati chat "صلاح الدين الأيوبي"
  hakawati chat "عمر بن الخطاب" --user yousef`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().IntVar(&topK, "topk", 0, "Number of passages retrieved per question (0 = configured default)")
	chatCmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed progress")
}

func runChat(cmd *cobra.Command, args []string) error {
	character := args[0]
	ctx := context.Background()

	cfg, err := orchestrator.LoadConfig()
	if err != nil {
		return err
	}
	if topK > 0 {
		cfg.TopK = topK
	}

	if verbose {
		fmt.Println(contextStyle.Render("→ Initializing pipeline..."))
	}
	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	defer p.Close()

	fmt.Println()
	fmt.Println(headerStyle.Render("Conversing with " + character))
	fmt.Println(contextStyle.Render("Type a question, /reset to start over, /quit to leave."))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(questionStyle.Render("> "))
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return nil
		case "/reset":
			if err := p.chat.Reset(ctx, character); err != nil {
				fmt.Println(errorStyle.Render("Error: ") + err.Error())
				continue
			}
			fmt.Println(successStyle.Render("✓ Conversation cleared"))
			continue
		}

		answer, err := p.chat.Ask(ctx, character, line)
		if err != nil {
			fmt.Println(errorStyle.Render("Error: ") + err.Error())
			continue
		}

		fmt.Println()
		fmt.Println(answerStyle.Render(answer.Text))
		if len(answer.Sources) > 0 {
			fmt.Println(contextStyle.Render("Sources: " + strings.Join(answer.Sources, ", ")))
		}
		fmt.Println()
	}

	return scanner.Err()
}

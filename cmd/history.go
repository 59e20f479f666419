package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/convo"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/orchestrator"
)

var historyCmd = &cobra.Command{
	Use:   "history [character]",
	Short: "Show the conversation held with a character",
	Long: `Print the full conversation held with a character, oldest turn first.

The history shown belongs to the current --user; other users' conversations
with the same character are separate.

Examples:
  hakawati history "صلاح الدين الأيوبي"
  hakawati history "عمر بن الخطاب" --user yousef`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	character := args[0]
	ctx := context.Background()

	cfg, err := orchestrator.LoadConfig()
	if err != nil {
		return err
	}

	store, err := openBlobStore(cfg)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	defer store.Close()

	convoStore, err := convo.NewStore(store)
	if err != nil {
		return err
	}
	record, err := convoStore.Load(ctx, userID, character)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	if len(record.Turns) == 0 {
		fmt.Println(contextStyle.Render("No conversation with " + character + " yet."))
		return nil
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Conversation with " + character))
	fmt.Println()
	for _, turn := range record.Turns {
		stamp := contextStyle.Render(turn.Timestamp.Format("2006-01-02 15:04"))
		switch turn.Role {
		case convo.RoleHuman:
			fmt.Printf("%s %s\n", stamp, questionStyle.Render(turn.Content))
		default:
			fmt.Printf("%s %s\n", stamp, answerStyle.Render(turn.Content))
		}
	}
	fmt.Println()
	fmt.Println(contextStyle.Render(fmt.Sprintf("%d turns", len(record.Turns))))

	return nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/convo"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/orchestrator"
)

var resetCmd = &cobra.Command{
	Use:   "reset [character]",
	Short: "Clear the conversation held with a character",
	Long: `Discard the conversation held with a character and start fresh.

Only the current --user's conversation is cleared. The character's knowledge
index is kept, so the next question does not rebuild it.

Examples:
  hakawati reset "صلاح الدين الأيوبي"
  hakawati reset "عمر بن الخطاب" --user yousef`,
	Args: cobra.ExactArgs(1),
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
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
	if err := convoStore.Save(ctx, convo.NewRecord(userID, character)); err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println(successStyle.Render("✓ Conversation with " + character + " cleared"))
	return nil
}

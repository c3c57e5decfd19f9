package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/procview/internal/models"
)

var feedbackMessage string

var feedbackCmd = &cobra.Command{
	Use:   "feedback <procedure-id>",
	Short: "Send feedback about a procedure",
	Long: `Send a feedback message about a procedure to its authors.

The message is prompted for when --message is omitted and stdin is a
terminal.

Examples:
  procview feedback 64f1c2 --message "Step 3 torque value is outdated"`,
	Args: cobra.ExactArgs(1),
	RunE: runFeedback,
}

func init() {
	feedbackCmd.Flags().StringVarP(&feedbackMessage, "message", "m", "", "feedback text")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	doc, err := library.Lookup(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return sendFeedback(cmd, doc, feedbackMessage)
}

func sendFeedback(cmd *cobra.Command, doc models.ProcedureNode, message string) error {
	if message == "" && stdinIsTerminal() {
		if err := promptFeedback(doc.Name, &message); err != nil {
			return fmt.Errorf("read feedback: %w", err)
		}
	}
	if err := library.SubmitFeedback(cmd.Context(), doc.ID, message); err != nil {
		return fmt.Errorf("feedback: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), defaultTheme.successStyle().Render("Thanks, your feedback was sent."))
	return nil
}

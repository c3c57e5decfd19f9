package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/procview/internal/models"
	"github.com/raphaelgruber/procview/internal/navigation"
	"github.com/raphaelgruber/procview/internal/tui"
)

// ErrNoPayload is returned by scan when no payload is given and stdin is a
// terminal.
var ErrNoPayload = errors.New("no scanned payload: pass it as an argument or pipe it on stdin")

const plainWidth = 80

// runViewer runs the interactive viewer; tests replace it.
var runViewer = tui.Run

var (
	openPlain bool
	scanPlain bool
	scanYes   bool
)

var openCmd = &cobra.Command{
	Use:   "open <procedure-id>",
	Short: "View a procedure",
	Long: `Open a procedure from the recent list or the cached folder tree.

The interactive viewer is used when stdout is a terminal; otherwise, or with
--plain, the whole procedure is printed as text.

Examples:
  procview open 64f1c2
  procview open 64f1c2 --plain | less`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

var scanCmd = &cobra.Command{
	Use:   "scan [payload]",
	Short: "Open the procedure behind a scanned QR code",
	Long: `Resolve a decoded QR payload to a procedure and open it.

The payload is read from stdin when not given as an argument, so a
barcode scanner or zbarimg can be piped in. On a terminal the procedure
name is shown for confirmation first; --yes skips the question.

Examples:
  procview scan https://backend.example.com/api/v1/procedure/qr/64f1c2
  zbarimg -q --raw label.png | procview scan`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	openCmd.Flags().BoolVar(&openPlain, "plain", false, "print as text instead of starting the viewer")
	scanCmd.Flags().BoolVar(&scanPlain, "plain", false, "print as text instead of starting the viewer")
	scanCmd.Flags().BoolVarP(&scanYes, "yes", "y", false, "open without asking for confirmation")
}

func runOpen(cmd *cobra.Command, args []string) error {
	doc, err := library.OpenByID(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return view(cmd, doc, openPlain)
}

func runScan(cmd *cobra.Command, args []string) error {
	payload, err := readPayload(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	doc, err := library.Resolve(ctx, payload)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if !scanYes && stdinIsTerminal() {
		ok, err := confirmOpen(doc.Name)
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not opened.")
			return nil
		}
	}
	return view(cmd, library.Open(ctx, doc), scanPlain)
}

func readPayload(in io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if stdinIsTerminal() {
		return "", ErrNoPayload
	}
	data, err := io.ReadAll(io.LimitReader(in, 4096))
	if err != nil {
		return "", fmt.Errorf("read payload: %w", err)
	}
	payload := strings.TrimSpace(string(data))
	if payload == "" {
		return "", ErrNoPayload
	}
	return payload, nil
}

// view shows doc in the interactive viewer, or as text when plain is set or
// stdout is not a terminal. Leaving the viewer with f prompts for feedback.
func view(cmd *cobra.Command, doc models.ProcedureNode, plain bool) error {
	if plain || !stdoutIsTerminal() {
		return tui.WritePlain(cmd.OutOrStdout(), doc, plainWidth, logger)
	}

	_, sessErr := library.Session(cmd.Context())
	res, err := runViewer(doc, tui.Options{
		Loading:  navigation.LoadingPolicy{MinDisplay: cfg.LoadingDelay},
		Logger:   logger,
		Feedback: sessErr == nil && stdinIsTerminal(),
	})
	if err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	logger.Debug("viewer closed", "procedure", doc.ID, "position", res.Position)

	if res.FeedbackRequested {
		return sendFeedback(cmd, doc, "")
	}
	return nil
}

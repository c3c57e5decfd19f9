package cli

import (
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// stdinIsTerminal checks if stdin is connected to a terminal. Tests replace it.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// stdoutIsTerminal decides between the interactive viewer and plain output.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
}

// promptCredentials asks for whichever of email and password is missing.
func promptCredentials(email, password *string) error {
	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(email))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password))
	}
	if len(fields) == 0 {
		return nil
	}
	return newForm(huh.NewGroup(fields...)).Run()
}

// promptFeedback asks for a feedback message about the named procedure.
func promptFeedback(procedure string, message *string) error {
	return newForm(
		huh.NewGroup(
			huh.NewText().
				Title("Feedback on " + procedure).
				Description("Describe what is wrong or unclear").
				Value(message),
		),
	).Run()
}

// confirmOpen asks whether to open a scanned procedure. Tests replace it.
var confirmOpen = func(name string) (bool, error) {
	open := true
	err := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Procedure found").
				Description(name).
				Affirmative("Open").
				Negative("Cancel").
				Value(&open),
		),
	).Run()
	return open, err
}

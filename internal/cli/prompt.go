package cli

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// resolvePassword returns the flag value when given, otherwise prompts on the
// terminal without echo. The plaintext never leaves the process; only its
// hash is stored or compared.
func resolvePassword(flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("stdin is not a terminal; pass the password via flag")
	}
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pass), nil
}

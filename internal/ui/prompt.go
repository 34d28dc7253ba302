package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/manifoldco/promptui"
)

// ErrCancelled is returned when the user aborts a prompt
var ErrCancelled = errors.New("operation cancelled by user")

// ConfirmPrompt asks a yes/no confirmation question
func ConfirmPrompt(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			// IsConfirm prompts report "n" as ErrAbort
			return false, nil
		}
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, ErrCancelled
		}
		return false, err
	}

	// promptui returns "y" for yes
	return strings.EqualFold(result, "y"), nil
}

// ConfirmDangerousAction asks for confirmation with a warning
func ConfirmDangerousAction(w io.Writer, action string, target string) (bool, error) {
	PrintWarning(w, "You are about to %s: %s", action, target)
	PrintWarning(w, "This action cannot be undone!")
	fmt.Fprintln(w)

	return ConfirmPrompt(fmt.Sprintf("Are you sure you want to %s", action))
}

// FuzzyFilter keeps the items whose key fuzzily matches query, ignoring
// case and diacritics. An empty query keeps everything.
func FuzzyFilter[T any](query string, items []T, key func(T) string) []T {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	var matched []T
	for _, item := range items {
		if fuzzy.MatchNormalizedFold(query, key(item)) {
			matched = append(matched, item)
		}
	}
	return matched
}

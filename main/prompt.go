package main

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// Ask for a yes/no confirmation on the terminal. Answering no is not an
// error; interrupting the prompt is.
func promptYes(message string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     message,
		IsConfirm: true,
	}

	_, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

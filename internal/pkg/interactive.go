package pkg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// InteractiveManager asks the operator yes/no questions on the terminal
type InteractiveManager struct {
	logger *slog.Logger
	reader *bufio.Reader
	out    io.Writer

	questionStyle lipgloss.Style
	hintStyle     lipgloss.Style
}

// NewInteractiveManager creates a new InteractiveManager reading from stdin
func NewInteractiveManager(logger *slog.Logger) *InteractiveManager {
	return NewInteractiveManagerWithIO(logger, os.Stdin, os.Stdout)
}

// NewInteractiveManagerWithIO creates an InteractiveManager on explicit streams
func NewInteractiveManagerWithIO(logger *slog.Logger, in io.Reader, out io.Writer) *InteractiveManager {
	return &InteractiveManager{
		logger:        logger,
		reader:        bufio.NewReader(in),
		out:           out,
		questionStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		hintStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	}
}

// Confirm asks question and returns the answer. An empty line or end of
// input selects the default. Unrecognised answers ask again.
func (im *InteractiveManager) Confirm(question string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}

	for {
		fmt.Fprintf(im.out, "%s %s ", im.questionStyle.Render(question), im.hintStyle.Render(hint))

		input, err := im.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("failed to read user input: %w", err)
		}

		choice := strings.ToLower(strings.TrimSpace(input))
		switch choice {
		case "":
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(im.out)
			}
			im.logger.Debug("Using default answer", "question", question, "answer", defaultYes)
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		if errors.Is(err, io.EOF) {
			return defaultYes, nil
		}
		im.logger.Warn("Invalid choice, please answer y or n", "choice", choice)
	}
}

// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package spartaup

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// ActionStyle highlights messages that ask a human to do something
var ActionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{
	Light: "#8c6c3e", // tokyonight-day amber/yellow
	Dark:  "#e0af68", // tokyonight amber/yellow
})

func printCommand(logger *log.Logger, argv []string) {
	line := CommandString(argv)

	if termenv.EnvNoColor() {
		// this is essentially the same behavior/rendering as make
		logger.Printf("$ %s", line)
		return
	}

	var buf strings.Builder
	style := "tokyonight-day"
	if lipgloss.HasDarkBackground() {
		style = "tokyonight-moon"
	}
	if err := quick.Highlight(&buf, line, "shell", "terminal256", style); err != nil {
		logger.Debugf("failed to highlight: %v", err)
		logger.Printf("$ %s", line)
		return
	}

	color := lipgloss.AdaptiveColor{
		Light: "#c5c6bC",
		Dark:  "#3a3943",
	}
	gray := lipgloss.NewStyle().Background(color)

	logger.Printf("%s $ %s", gray.Render(" "), strings.TrimSpace(buf.String()))
}

func printAction(logger *log.Logger, msg string) {
	if termenv.EnvNoColor() {
		logger.Print(msg)
		return
	}
	logger.Print(ActionStyle.Render(msg))
}

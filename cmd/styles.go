// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// https://github.com/charmbracelet/vhs/blob/main/themes.json
var (
	blue = lipgloss.AdaptiveColor{
		Light: "#2e7de9", // tokyonight-day blue
		Dark:  "#7aa2f7", // tokyonight blue
	}
	cyan = lipgloss.AdaptiveColor{
		Light: "#007197", // tokyonight-day cyan
		Dark:  "#7dcfff", // tokyonight cyan
	}
	amber = lipgloss.AdaptiveColor{
		Light: "#8c6c3e", // tokyonight-day amber/yellow
		Dark:  "#e0af68", // tokyonight amber/yellow
	}
	red = lipgloss.AdaptiveColor{
		Light: "#f52a65", // tokyonight-day red
		Dark:  "#f7768e", // tokyonight red
	}
	magenta = lipgloss.AdaptiveColor{
		Light: "#9854f1", // tokyonight-day magenta
		Dark:  "#bb9af7", // tokyonight magenta
	}
)

// DefaultStyles returns the default styles.
//
// Informational messages are cyan, anything that needs a human's attention is amber or red.
func DefaultStyles() *log.Styles {
	styles := log.DefaultStyles()

	styles.Levels[log.DebugLevel] = styles.Levels[log.DebugLevel].Foreground(blue)
	styles.Levels[log.InfoLevel] = styles.Levels[log.InfoLevel].Foreground(cyan)
	styles.Levels[log.WarnLevel] = styles.Levels[log.WarnLevel].Foreground(amber)
	styles.Levels[log.ErrorLevel] = styles.Levels[log.ErrorLevel].Foreground(red)
	styles.Levels[log.FatalLevel] = styles.Levels[log.FatalLevel].Foreground(magenta)

	styles.Keys["stage"] = lipgloss.NewStyle().Foreground(magenta)
	styles.Values["stage"] = lipgloss.NewStyle().Bold(true)
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(red)
	styles.Values["error"] = lipgloss.NewStyle().Foreground(red)

	return styles
}

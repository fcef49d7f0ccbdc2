// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Palette. The first two are Odoo's brand colors; all of them stay legible
// on dark and light terminals.
const (
	ColorPrimary = lipgloss.Color("#714B67") // Odoo plum
	ColorAccent  = lipgloss.Color("#017E84") // Odoo teal
	ColorMuted   = lipgloss.Color("#8A8A8A")
	ColorSuccess = lipgloss.Color("#28A745")
	ColorError   = lipgloss.Color("#D9534F")
	ColorWarning = lipgloss.Color("#E6A23C")
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	SubtitleStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	SuccessStyle  = lipgloss.NewStyle().Foreground(ColorSuccess)
	ErrorStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	// CmdStyle marks commands, config keys and paths.
	CmdStyle = lipgloss.NewStyle().Foreground(ColorAccent)

	tableHeaderStyle = TitleStyle.Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

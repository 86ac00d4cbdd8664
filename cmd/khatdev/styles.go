// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette drawn from the Khatulistiwa cultural colors, with neutral
// tones for secondary text.
const (
	// ColorPrimary is merah delima, used for titles and headers.
	ColorPrimary = lipgloss.Color("#DC143C")

	// ColorAccent is kuning emas, used for application names and digests.
	ColorAccent = lipgloss.Color("#FFD700")

	// ColorSuccess is hijau daun, used for passed checks and finished builds.
	ColorSuccess = lipgloss.Color("#228B22")

	// ColorHighlight is a lighter biru laut, used for paths and commands.
	ColorHighlight = lipgloss.Color("#3B9AC4")

	// ColorError is red, used for failures.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber, used for compliance warnings.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorMuted is gray, used for secondary text.
	ColorMuted = lipgloss.Color("#6B7280")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// AccentStyle is for application names and hashes.
	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	// SuccessStyle is for success messages and passed checks.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for paths, commands and keys.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	keyStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Width(14)
)

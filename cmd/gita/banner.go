package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerPetalStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	bannerLeafStyle    = lipgloss.NewStyle().Foreground(colorPrimaryLight)
	bannerStemStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	bannerTitleStyle   = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	bannerTaglineStyle = lipgloss.NewStyle().Foreground(colorPrimaryDark).Italic(true)
	bannerVersionStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

func renderBanner() string {
	petal := bannerPetalStyle.Render("❀")
	leaf := bannerLeafStyle.Render("~")
	stem := bannerStemStyle.Render("|")
	title := bannerTitleStyle.Render("GITA")

	lines := []string{
		"          " + petal,
		"      " + leaf + " " + petal + "   " + petal + " " + leaf,
		"         " + title,
		"      " + leaf + "    " + stem + "    " + leaf,
	}
	return strings.Join(lines, "\n")
}

func renderBannerWithTagline() string {
	tagline := bannerTaglineStyle.Render("   one shloka at a time")
	ver := bannerVersionStyle.Render("          " + version)
	return strings.Join([]string{renderBanner(), tagline, ver}, "\n")
}

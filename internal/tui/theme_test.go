package tui

import "testing"

func TestDetectTheme(t *testing.T) {
	t.Setenv("SLIPWAY_THEME", "")
	t.Setenv("COLORFGBG", "")

	if got := DetectTheme("light"); got.Name != "light" {
		t.Errorf("flag light: theme = %s", got.Name)
	}
	if got := DetectTheme("DARK"); got.Name != "dark" {
		t.Errorf("flag DARK: theme = %s", got.Name)
	}

	t.Setenv("SLIPWAY_THEME", "light")
	if got := DetectTheme(""); got.Name != "light" {
		t.Errorf("env light: theme = %s", got.Name)
	}

	t.Setenv("SLIPWAY_THEME", "")
	t.Setenv("COLORFGBG", "0;15")
	if got := DetectTheme(""); got.Name != "light" {
		t.Errorf("COLORFGBG light bg: theme = %s", got.Name)
	}

	t.Setenv("COLORFGBG", "15;0")
	if got := DetectTheme(""); got.Name != "dark" {
		t.Errorf("COLORFGBG dark bg: theme = %s", got.Name)
	}

	t.Setenv("COLORFGBG", "")
	if got := DetectTheme(""); got.Name != "dark" {
		t.Errorf("default: theme = %s", got.Name)
	}
}

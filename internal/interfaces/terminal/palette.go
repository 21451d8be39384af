package terminal

import "github.com/fatih/color"

type palette struct {
	cyan, green, yellow, red, white, dim func(a ...any) string
}

func newPalette(noColor bool) palette {
	paint := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		cyan:   paint(color.FgCyan, color.Bold),
		green:  paint(color.FgGreen, color.Bold),
		yellow: paint(color.FgYellow, color.Bold),
		red:    paint(color.FgRed, color.Bold),
		white:  paint(color.FgWhite, color.Bold),
		dim:    paint(color.Faint),
	}
}

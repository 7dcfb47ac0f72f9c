package theme

import (
	"image/color"

	"fyne.io/fyne/v2"
	fynetheme "fyne.io/fyne/v2/theme"
)

// FyneTarget forces the variant of a fyne application's theme.
type FyneTarget struct {
	app fyne.App
}

func NewFyneTarget(app fyne.App) *FyneTarget {
	return &FyneTarget{app: app}
}

func (t *FyneTarget) Name() string {
	return "fyne"
}

func (t *FyneTarget) ApplyTheme(variant Variant) error {
	if t.app == nil {
		return nil
	}

	forced := fynetheme.VariantLight
	if variant == VariantDark {
		forced = fynetheme.VariantDark
	}
	t.app.Settings().SetTheme(&variantTheme{base: fynetheme.DefaultTheme(), variant: forced})

	return nil
}

// variantTheme renders the default theme in a fixed variant regardless of the
// OS preference.
type variantTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
}

func (t *variantTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return t.base.Color(name, t.variant)
}

func (t *variantTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *variantTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *variantTheme) Size(name fyne.ThemeSizeName) float32 {
	return t.base.Size(name)
}

package styles

// HighContrastTheme favors legibility on low-quality terminals.
var HighContrastTheme = Theme{
	Name:        "high-contrast",
	BorderStyle: "sharp",
	Base: BaseColors{
		Background: "16",
		Foreground: "231",
		Muted:      "250",
		Accent:     "51",
		Border:     "231",
	},
	Chrome: ChromeColors{
		Header:       "117",
		Footer:       "159",
		Breadcrumb:   "195",
		SelectedItem: "51",
		Error:        "196",
	},
	Table: TableColors{
		Heading:      "195",
		FocusedCell:  "51",
		Unread:       "226",
		Muted:        "248",
		Participated: "87",
	},
	Filters: FilterColors{
		Selected:   "51",
		Unselected: "250",
		Focused:    "117",
	},
}

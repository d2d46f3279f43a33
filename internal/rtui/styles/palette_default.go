package styles

// DefaultTheme is the baseline dark palette for rtopics.
var DefaultTheme = Theme{
	Name:        "default",
	BorderStyle: "rounded",
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
	},
	Chrome: ChromeColors{
		Header:       "111",
		Footer:       "110",
		Breadcrumb:   "109",
		SelectedItem: "75",
		Error:        "203",
	},
	Table: TableColors{
		Heading:      "109",
		FocusedCell:  "75",
		Unread:       "220",
		Muted:        "243",
		Participated: "81",
	},
	Filters: FilterColors{
		Selected:   "75",
		Unselected: "245",
		Focused:    "111",
	},
}

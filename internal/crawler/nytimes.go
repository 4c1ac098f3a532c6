package crawler

// NYTimesSelectors targets the nytimes.com search page
var NYTimesSelectors = Selectors{
	CookieAccept: `[data-testid="Accept all-btn"]`,

	SearchButton: `[data-testid="search-button"]`,
	SearchInput:  `[data-testid="search-input"]`,

	DateButton:      `[data-testid="search-date-dropdown-a"]`,
	DateOptions:     `[aria-label="Date Range"] li`,
	DateOptionLabel: "Specific Dates",
	StartDate:       `#startDate`,
	EndDate:         `#endDate`,
	DateLayout:      "01/02/2006",

	SortSelect: `[data-testid="SearchForm-sortBy"]`,
	SortValue:  "newest",

	SectionButton:  `[data-testid="search-multiselect-button"]`,
	SectionOptions: `[data-testid="multi-select-dropdown-list"] li`,

	LoadMore: `[data-testid="search-show-more-button"]`,

	Results:     `[data-testid="search-results"]`,
	Item:        `li[data-testid="search-bodega-result"]`,
	Title:       "h4",
	Date:        `[data-testid="todays-date"]`,
	Description: "p.css-16nhkrn",
	Section:     "p.css-8j6f0z",
	Image:       "img",

	Remove: []string{".visually-hidden"},
}

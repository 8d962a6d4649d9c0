package calendar

// Calendar pairs an era table with a month-length generator.
type Calendar struct {
	eras   EraTable
	months *MonthLengths
}

// New builds a calendar. A nil generator gets the default Fibonacci seed.
func New(eras EraTable, months *MonthLengths) *Calendar {
	if months == nil {
		months = NewMonthLengths()
	}
	if eras.Len() == 0 {
		eras = DefaultEraTable()
	}
	return &Calendar{eras: eras, months: months}
}

// Default returns the calendar used when nothing is configured.
func Default() *Calendar {
	return New(DefaultEraTable(), nil)
}

// Eras returns the era table.
func (c *Calendar) Eras() EraTable {
	return c.eras
}

// MonthLength returns the number of days in month.
func (c *Calendar) MonthLength(month int) int {
	return c.months.Length(month)
}

// NextDay returns the day after (month, day), rolling into the next month
// once day passes the month's length.
func (c *Calendar) NextDay(month, day int) (int, int) {
	day++
	if day > c.MonthLength(month) {
		return month + 1, 1
	}
	return month, day
}

// ValidDay reports whether (month, day) exists in the calendar.
func (c *Calendar) ValidDay(month, day int) bool {
	return month >= 1 && day >= 1 && day <= c.MonthLength(month)
}

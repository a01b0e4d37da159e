package models

// FreezeState tracks how many streak freezes have been consumed in a
// calendar month. MonthKey is formatted as YYYY-MM.
type FreezeState struct {
	MonthKey string `json:"month_key"`
	Used     int    `json:"used"`
}

// Remaining returns how many freezes are left for the month given the
// configured allowance. Never negative.
func (f FreezeState) Remaining(allowance int) int {
	remaining := allowance - f.Used
	if remaining < 0 {
		return 0
	}
	return remaining
}

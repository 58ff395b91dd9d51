package hris

// Field is one labelled value of the employee detail panel.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Detail returns the fields shown when an employee is selected on the chart.
// Everything comes from the roster record; no extra fetch is needed.
func Detail(e Employee) []Field {
	hire := ""
	if !e.HireDate.IsZero() {
		hire = e.HireDate.Format(DateLayout)
	}
	return []Field{
		{Label: "Hire Date", Value: hire},
		{Label: "Status", Value: e.Status.Label()},
		{Label: "Department", Value: e.Department},
		{Label: "ID", Value: ShortID(e.ID)},
	}
}

// ShortID abbreviates long identifiers to their first eight characters.
func ShortID(id string) string {
	r := []rune(id)
	if len(r) <= 8 {
		return id
	}
	return string(r[:8]) + "..."
}

// Span-of-control colours.
const (
	SpanGreen  = "green"
	SpanYellow = "yellow"
	SpanRed    = "red"
)

// SpanColor grades a manager's span of control: up to 8 direct reports is
// green, up to 12 yellow, anything wider red.
func SpanColor(directReports int) string {
	switch {
	case directReports <= 8:
		return SpanGreen
	case directReports <= 12:
		return SpanYellow
	}
	return SpanRed
}

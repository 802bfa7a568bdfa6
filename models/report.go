package models

// ReportRow is one line of the currency report.
type ReportRow struct {
	Currency string
	Element  string
	Initial  string
	Updated  string
	Verdict  string
	Comment  string
}

// ReportHeader lists the column names matching ReportRow's field order.
var ReportHeader = []string{"Currency", "Element", "Initial Value", "Updated Value", "Verdict", "Comments"}

// Values returns the row's cells in ReportHeader order.
func (r ReportRow) Values() []string {
	return []string{r.Currency, r.Element, r.Initial, r.Updated, r.Verdict, r.Comment}
}

// Rows flattens the log: one row per tracked element, then one availability
// summary row, for each recorded group.
func (l *ResultsLog) Rows() []ReportRow {
	if l == nil {
		return nil
	}
	rows := make([]ReportRow, 0, len(l.groups)*(l.tracked+1))
	for _, g := range l.groups {
		for _, e := range g.Elements {
			rows = append(rows, elementRow(g, e))
		}
		rows = append(rows, elementRow(g, g.Availability))
	}
	return rows
}

func elementRow(g ComparisonResult, e ElementResult) ReportRow {
	return ReportRow{
		Currency: g.Currency.Label,
		Element:  e.Label,
		Initial:  e.Initial,
		Updated:  e.Updated,
		Verdict:  e.Verdict.Describe(),
		Comment:  g.Err,
	}
}

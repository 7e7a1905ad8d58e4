package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/dtca-portal/dtca-portal/internal/fixtures"
)

// Section is one named series written to a CSV export.
type Section struct {
	Name    string
	Records fixtures.Series
}

// WriteStudentsCSV serialises the student directory.
func WriteStudentsCSV(w io.Writer, students []fixtures.StudentRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Name", "Email", "Course", "Progress", "Status"}); err != nil {
		return err
	}
	for _, st := range students {
		if err := writer.Write([]string{
			st.Name,
			st.Email,
			st.Course,
			formatFloat(st.Progress),
			st.Status,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSeriesCSV emits every section as rows prefixed by the section name.
func WriteSeriesCSV(w io.Writer, sections []Section) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Section", "Label", "Value", "Percent", "Target"}); err != nil {
		return err
	}
	for _, section := range sections {
		for _, rec := range section.Records {
			target := ""
			if rec.Target > 0 {
				target = formatFloat(rec.Target)
			}
			if err := writer.Write([]string{
				section.Name,
				rec.Label,
				formatFloat(rec.Value),
				formatFloat(rec.Percent),
				target,
			}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

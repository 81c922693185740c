package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/clinicdesk/clinic-scheduler/internal/models"
)

// AppointmentsWorkbook renders appointments (with their preloaded patient,
// service and staff rows) into a single-sheet xlsx file.
func AppointmentsWorkbook(appointments []models.Appointment) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"Reference", "Date", "Start", "End", "Patient", "Phone", "Service", "Staff", "Status", "Notes"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, ap := range appointments {
		staffName := ""
		if ap.Staff != nil {
			staffName = ap.Staff.Name
		}

		values := []any{
			ap.Reference,
			ap.StartAt.Format("2006-01-02"),
			ap.StartAt.Format("15:04"),
			ap.EndAt.Format("15:04"),
			ap.Patient.Name,
			ap.Patient.Phone,
			ap.Service.Name,
			staffName,
			ap.Status,
			ap.Notes,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 38); err != nil {
		return nil, err
	}

	return f, nil
}

// Filename builds the attachment name for a month export.
func Filename(year int, month int) string {
	return fmt.Sprintf("appointments-%04d-%02d.xlsx", year, month)
}

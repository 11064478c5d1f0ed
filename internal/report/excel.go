package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"salonbook/internal/model"
)

const maxSheetName = 31

var errNoSheet = errors.New("no active sheet")

// sheetWriter appends rows to an excelize workbook one sheet at a time.
type sheetWriter struct {
	file  *excelize.File
	sheet string
	row   int
	bold  int
}

func newSheetWriter() (*sheetWriter, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	return &sheetWriter{file: f, bold: bold}, nil
}

// addSheet starts a new sheet. The first call renames the default one.
func (w *sheetWriter) addSheet(name string) error {
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	if w.sheet == "" {
		if err := w.file.SetSheetName(w.file.GetSheetName(0), name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	w.sheet = name
	w.row = 1
	return nil
}

func (w *sheetWriter) writeHeader(columns ...string) error {
	row := make([]any, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	if err := w.writeRow(row...); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, w.row-1)
	last, _ := excelize.CoordinatesToCellName(len(columns), w.row-1)
	return w.file.SetCellStyle(w.sheet, first, last, w.bold)
}

func (w *sheetWriter) writeRow(values ...any) error {
	if w.sheet == "" {
		return errNoSheet
	}
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d of %s: %w", w.row, w.sheet, err)
	}
	w.row++
	return nil
}

func (w *sheetWriter) close() error {
	return w.file.Close()
}

// WriteExcel renders the summary and the appointments it covers as an xlsx
// workbook.
func WriteExcel(out io.Writer, s Summary, appointments []model.Appointment) error {
	w, err := newSheetWriter()
	if err != nil {
		return err
	}
	defer func() { _ = w.close() }()

	steps := []func(*sheetWriter) error{
		func(w *sheetWriter) error { return writeSummarySheet(w, s) },
		func(w *sheetWriter) error { return writeRankingSheet(w, "Services", "Service", s.Services) },
		func(w *sheetWriter) error {
			return writeRankingSheet(w, "Professionals", "Professional", s.Professionals)
		},
		func(w *sheetWriter) error { return writeRankingSheet(w, "Clients", "Client", s.Clients) },
		func(w *sheetWriter) error { return writeAppointmentsSheet(w, appointments) },
	}
	for _, step := range steps {
		if err := step(w); err != nil {
			return err
		}
	}

	if err := w.file.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(w *sheetWriter, s Summary) error {
	if err := w.addSheet("Summary"); err != nil {
		return err
	}
	from := "-"
	if s.From != nil {
		from = s.From.Format("02/01/2006")
	}
	rows := [][]any{
		{"Period", string(s.Period)},
		{"From", from},
		{"To", s.To.Format("02/01/2006")},
		{"Appointments", s.TotalAppointments},
		{"Revenue", s.Revenue},
		{"Distinct clients", s.DistinctClients},
		{"Average ticket", s.AverageTicket},
	}
	if err := w.writeHeader("Metric", "Value"); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.writeRow(r...); err != nil {
			return err
		}
	}
	if len(s.Monthly) == 0 {
		return nil
	}
	if err := w.writeRow(); err != nil {
		return err
	}
	if err := w.writeHeader("Month", "Appointments"); err != nil {
		return err
	}
	for _, m := range s.Monthly {
		if err := w.writeRow(fmt.Sprintf("%04d-%02d", m.Month.Year, int(m.Month.Month)), m.Count); err != nil {
			return err
		}
	}
	return nil
}

func writeRankingSheet(w *sheetWriter, sheet, label string, ranking []Ranked) error {
	if err := w.addSheet(sheet); err != nil {
		return err
	}
	if err := w.writeHeader(label, "Appointments", "Revenue"); err != nil {
		return err
	}
	for _, r := range ranking {
		if err := w.writeRow(r.Name, r.Count, r.Revenue); err != nil {
			return err
		}
	}
	return nil
}

func writeAppointmentsSheet(w *sheetWriter, appointments []model.Appointment) error {
	if err := w.addSheet("Appointments"); err != nil {
		return err
	}
	if err := w.writeHeader("Date", "Time", "Client", "Service", "Professional", "Duration", "Price"); err != nil {
		return err
	}
	for _, a := range appointments {
		err := w.writeRow(
			a.Date.Format("02/01/2006"),
			a.Date.Format(model.TimeFormat),
			a.Client.Name,
			a.Service.Name,
			a.Professional.Name,
			a.Minutes(),
			a.TotalPrice(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

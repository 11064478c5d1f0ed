package report

import (
	"fmt"
	"time"

	"salonbook/internal/model"
	"salonbook/internal/slots"
)

// WeekSlot is one 30-minute cell of the weekly calendar.
type WeekSlot struct {
	Time         string              `json:"time"`
	Appointments []model.Appointment `json:"appointments"`
	// Busy is set on every row an appointment runs through, including the
	// rows after the one it starts in.
	Busy bool `json:"busy"`
}

// WeekDay is one column of the weekly calendar.
type WeekDay struct {
	Date  string     `json:"date"`
	Slots []WeekSlot `json:"slots"`
}

// Week is a professional's Sunday-start weekly agenda.
type Week struct {
	ProfessionalID string              `json:"professionalId"`
	Start          time.Time           `json:"start"`
	End            time.Time           `json:"end"`
	Days           []WeekDay           `json:"days"`
	Outside        []model.Appointment `json:"outside"`
}

// WeekStart returns midnight of the Sunday on or before t.
func WeekStart(t time.Time) time.Time {
	day := slots.StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// BuildWeek places the professional's appointments of anchor's week into
// 30-minute rows between hours. Appointments outside the rows are listed
// in Outside.
func BuildWeek(appointments []model.Appointment, professionalID string, anchor time.Time, hours slots.Hours) Week {
	start := WeekStart(anchor)
	end := start.AddDate(0, 0, 7)
	step := int(slots.Granularity / time.Minute)
	rows := (hours.Close - hours.Open) / step

	w := Week{
		ProfessionalID: professionalID,
		Start:          start,
		End:            end.Add(-time.Nanosecond),
		Days:           make([]WeekDay, 7),
		Outside:        []model.Appointment{},
	}
	for d := range w.Days {
		w.Days[d].Date = start.AddDate(0, 0, d).Format("2006-01-02")
		w.Days[d].Slots = make([]WeekSlot, rows)
		for r := range rows {
			minutes := hours.Open + r*step
			w.Days[d].Slots[r] = WeekSlot{
				Time:         fmt.Sprintf("%02d:%02d", minutes/60, minutes%60),
				Appointments: []model.Appointment{},
			}
		}
	}

	for _, a := range appointments {
		if a.Professional.ID != professionalID || a.Date.Before(start) || !a.Date.Before(end) {
			continue
		}
		local := a.Date.In(start.Location())
		day := dayIndex(start, local)
		minutes := local.Hour()*60 + local.Minute()
		if day < 0 || minutes < hours.Open || (minutes-hours.Open)/step >= rows {
			w.Outside = append(w.Outside, a)
			continue
		}
		row := (minutes - hours.Open) / step
		cell := &w.Days[day].Slots[row]
		cell.Appointments = append(cell.Appointments, a)

		end := minutes + a.Minutes()
		for r := row; r < rows && hours.Open+r*step < end; r++ {
			w.Days[day].Slots[r].Busy = true
		}
	}
	return w
}

func dayIndex(weekStart, t time.Time) int {
	day := slots.StartOfDay(t)
	for d := range 7 {
		if weekStart.AddDate(0, 0, d).Equal(day) {
			return d
		}
	}
	return -1
}

package report

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"salonbook/internal/model"
)

// BirthdayGroup lists the clients born in one month.
type BirthdayGroup struct {
	Month   time.Month     `json:"month"`
	Name    string         `json:"name"`
	Clients []model.Client `json:"clients"`
}

// Birthdays is the birthdays screen.
type Birthdays struct {
	Current BirthdayGroup   `json:"current"`
	Next    []BirthdayGroup `json:"next"`
}

// ListBirthdays groups clients by birth month. The current month comes
// first; the other months follow in calendar order starting after it.
// Clients without a parsable birthday are left out.
func ListBirthdays(clients []model.Client, current time.Month) Birthdays {
	byMonth := make(map[time.Month][]model.Client)
	for _, c := range clients {
		if m, ok := c.BirthMonth(); ok {
			byMonth[m] = append(byMonth[m], c)
		}
	}

	group := func(m time.Month) BirthdayGroup {
		list := slices.Clone(byMonth[m])
		if list == nil {
			list = []model.Client{}
		}
		slices.SortStableFunc(list, func(a, b model.Client) int {
			if c := cmp.Compare(a.BirthDay(), b.BirthDay()); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		})
		return BirthdayGroup{Month: m, Name: m.String(), Clients: list}
	}

	out := Birthdays{Current: group(current), Next: []BirthdayGroup{}}
	for i := 1; i < 12; i++ {
		m := time.Month((int(current)-1+i)%12 + 1)
		if len(byMonth[m]) > 0 {
			out.Next = append(out.Next, group(m))
		}
	}
	return out
}

// schedule.go
package service

import (
	"errors"
	"fmt"
	"time"
)

// Generador de fechas de entrega. Función pura: mismo rango y mismo
// cronograma producen siempre la misma secuencia.

// Los días se nombran con estas siete etiquetas y ninguna otra.
// "thu" es la grafía canónica para jueves; variantes como "thurs"
// se rechazan en la validación, no se aceptan en silencio.
var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

var (
	ErrInvalidDate    = errors.New("fecha inválida, se espera AAAA-MM-DD")
	ErrUnknownWeekday = errors.New("día desconocido en el cronograma")
)

// DefaultScheduleWindow es el rango que se asume cuando no hay fecha de fin.
const DefaultScheduleWindow = 30 * 24 * time.Hour

// ParseDate interpreta una fecha "2006-01-02" en UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t.UTC(), nil
}

// ParseSchedule valida las etiquetas del cronograma y las traduce a días
// de semana. Etiqueta desconocida ⇒ error; el llamador responde 400.
func ParseSchedule(schedule []string) (map[time.Weekday]bool, error) {
	days := make(map[time.Weekday]bool, len(schedule))
	for _, name := range schedule {
		wd, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWeekday, name)
		}
		days[wd] = true
	}
	return days, nil
}

// GenerateDeliveryDates recorre cada día calendario entre start y end
// (inclusive) y devuelve los que caen en un día del cronograma. Si end es
// nil se asume start + 30 días. Puede devolver una secuencia vacía; el
// llamador decide si eso es un error (una orden sin entregas lo es).
func GenerateDeliveryDates(start time.Time, end *time.Time, days map[time.Weekday]bool) []time.Time {
	from := truncateToDay(start)
	var to time.Time
	if end != nil {
		to = truncateToDay(*end)
	} else {
		to = from.Add(DefaultScheduleWindow)
	}

	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if days[d.Weekday()] {
			dates = append(dates, d)
		}
	}
	return dates
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

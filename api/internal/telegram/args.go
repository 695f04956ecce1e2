package telegram

import (
	"errors"
	"strconv"
	"strings"

	"krishi-advisor/api/internal/advisory"
	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/calendar"
)

var errUsage = errors.New("bad command arguments")

// parseAdvice reads "<crop>; <stage>; <soil>"; soil may be omitted.
func parseAdvice(args string) (crop, stage, soil string, err error) {
	parts := strings.Split(args, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", errUsage
	}
	if len(parts) > 2 {
		soil = strings.Join(parts[2:], "; ")
	}
	return parts[0], parts[1], soil, nil
}

// parseSoil reads "<pH> <N> <P> <K> <OM%> [location...]". A decimal comma is
// accepted.
func parseSoil(args string) (types.SoilInputs, error) {
	f := strings.Fields(args)
	if len(f) < 5 {
		return types.SoilInputs{}, errUsage
	}
	var v [5]float64
	for i := range v {
		n, err := parseNumber(f[i])
		if err != nil {
			return types.SoilInputs{}, errUsage
		}
		v[i] = n
	}
	in := types.SoilInputs{
		PH:            v[0],
		Nitrogen:      v[1],
		Phosphorus:    v[2],
		Potassium:     v[3],
		OrganicMatter: v[4],
		Location:      strings.Join(f[5:], " "),
	}
	if err := in.Validate(); err != nil {
		return types.SoilInputs{}, err
	}
	return in, nil
}

// parseCalendar reads "<crop> <acres> <YYYY-MM-DD> [location...]".
func parseCalendar(args string) (advisory.CalendarRequest, error) {
	f := strings.Fields(args)
	if len(f) < 3 {
		return advisory.CalendarRequest{}, errUsage
	}
	acres, err := parseNumber(f[1])
	if err != nil || acres <= 0 {
		return advisory.CalendarRequest{}, errUsage
	}
	if _, err := calendar.ParseDate(f[2]); err != nil {
		return advisory.CalendarRequest{}, err
	}
	return advisory.CalendarRequest{
		Crop:       f[0],
		LandAcres:  acres,
		SowingDate: f[2],
		Location:   strings.Join(f[3:], " "),
	}, nil
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSuffix(s, "%"), ",", "."), 64)
}

// parseDays reads an optional positive day count.
func parseDays(args string, def int) (int, error) {
	if args == "" {
		return def, nil
	}
	n, err := strconv.Atoi(args)
	if err != nil || n <= 0 {
		return 0, errUsage
	}
	return n, nil
}

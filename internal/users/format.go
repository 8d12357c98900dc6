// Package users carries the display formatting for account fields. The
// wire always carries digits only; these helpers exist for views.
package users

import "eventdesk/pkg/validator"

// FormatCPF renders a CPF as 000.000.000-00, truncating extra digits.
func FormatCPF(raw string) string {
	d := validator.Digits(raw)
	if len(d) > 11 {
		d = d[:11]
	}
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + "." + d[3:]
	case len(d) <= 9:
		return d[:3] + "." + d[3:6] + "." + d[6:]
	default:
		return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	}
}

// FormatPhone renders a phone as (00) 0000-0000 or (00) 00000-0000
// depending on whether it has 10 or 11 digits.
func FormatPhone(raw string) string {
	d := validator.Digits(raw)
	if len(d) > 11 {
		d = d[:11]
	}
	switch {
	case len(d) <= 2:
		return d
	case len(d) <= 6:
		return "(" + d[:2] + ") " + d[2:]
	case len(d) <= 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	default:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
}

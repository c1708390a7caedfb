package mentor

import (
	"math"
	"net/mail"
	"sort"
	"strings"

	"mentordash/internal/domain/payment"
)

// Normalize trims the input, applies the default base rate and de-duplicates
// team names. It returns a *ValidationError when a field is unusable.
func Normalize(in Input) (Input, error) {
	out := Input{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		BaseRate: in.BaseRate,
		PhotoURL: strings.TrimSpace(in.PhotoURL),
	}
	fields := map[string]string{}
	if out.Name == "" {
		fields["name"] = "required"
	}
	if out.Email == "" {
		fields["email"] = "required"
	} else if _, err := mail.ParseAddress(out.Email); err != nil || !strings.Contains(out.Email, "@") {
		fields["email"] = "invalid email"
	}
	switch {
	case math.IsNaN(out.BaseRate) || math.IsInf(out.BaseRate, 0) || out.BaseRate < 0:
		fields["baseRate"] = "must be a non-negative number"
	case out.BaseRate == 0:
		out.BaseRate = payment.DefaultRatePerMinute
	}

	seen := map[string]bool{}
	out.Teams = []string{}
	for _, name := range in.Teams {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out.Teams = append(out.Teams, name)
	}
	sort.Strings(out.Teams)

	if len(fields) > 0 {
		return Input{}, &ValidationError{Fields: fields}
	}
	return out, nil
}

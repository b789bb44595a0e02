package rates

import (
	"strings"

	"github.com/ReefCultures/RateBox/internal/models"
)

// Known fast service codes, matched exactly. Anything slower (ground,
// economy, media mail) never reaches the customer: live cultures die in
// multi-day unrefrigerated transit, so speed is correctness here.
var allowedServiceCodes = map[string]struct{}{
	"ups_next_day_air_early_am":  {},
	"ups_next_day_air":           {},
	"ups_next_day_air_saver":     {},
	"ups_2nd_day_air_am":         {},
	"ups_2nd_day_air":            {},
	"ups_3_day_select":           {},
	"usps_priority_mail":         {},
	"usps_priority_mail_express": {},
}

var upsFastKeywords = []string{
	"next day", "next-day", "overnight",
	"2nd day", "2 day", "2-day", "second day",
	"3 day", "3-day",
}

var uspsFastKeywords = []string{
	"priority mail",
}

// IsAllowedService reports whether a rate's service level is acceptable for
// display. Exact service-code match first; otherwise a case-insensitive
// substring pass over the carrier/service text. The UPS branch is checked
// before the USPS one; that ordering is a long-standing heuristic, not a
// guarantee for carriers whose names contain both substrings.
func IsAllowedService(r models.Rate) bool {
	if _, ok := allowedServiceCodes[strings.ToLower(r.ServiceCode)]; ok {
		return true
	}

	text := serviceText(r)
	// UPS branch deliberately first ("usps" does not contain "ups" as a
	// substring, but a future carrier name could contain both).
	if strings.Contains(text, "ups") {
		return containsAny(text, upsFastKeywords)
	}
	if strings.Contains(text, "usps") {
		return containsAny(text, uspsFastKeywords)
	}
	return false
}

// serviceText flattens the rate's carrier/service fields into one lowercase
// string for keyword matching. Underscored service codes are normalized to
// spaces so "ups_next_day_air_saver" matches "next day" like its display
// name would.
func serviceText(r models.Rate) string {
	text := strings.ToLower(r.CarrierName + " " + r.ServiceType + " " + r.ServiceCode)
	return strings.ReplaceAll(text, "_", " ")
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Package render fills the report page template from a stored record. The
// template carries four injection points; each value is serialized as JSON
// text and substituted verbatim into the page's script context.
package render

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/rinevard/BIT-Annual-Eat/internal/report"
)

//go:embed template.html
var pageTemplate string

const (
	slotDailyStats = "__EAT_DATA__"
	slotAchState   = "__ACH_STATE__"
	slotBarcodeID  = "__BARCODE_ID__"
	slotProfile    = "__PROFILE__"
)

// Page renders the report page for id from a JSON-shaped record.
func Page(id string, record *report.Record) (string, error) {
	profile, err := json.Marshal(record.Profile)
	if err != nil {
		return "", err
	}
	barcodeID, err := json.Marshal(id)
	if err != nil {
		return "", err
	}
	replacer := strings.NewReplacer(
		slotDailyStats, rawOrNull(record.DailyStats),
		slotAchState, rawOrNull(record.AchState),
		slotBarcodeID, string(barcodeID),
		slotProfile, string(profile),
	)
	return replacer.Replace(pageTemplate), nil
}

func rawOrNull(value json.RawMessage) string {
	if len(value) == 0 {
		return "null"
	}
	return string(value)
}

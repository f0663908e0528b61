package dispatch

import "regexp"

// Category is the semantic class of an openWB topic.
type Category int

// Topic categories.
const (
	CategoryUnrecognized Category = iota
	CategoryCounter
	CategoryGlobalCounter
	CategoryBattery
	CategoryPV
	CategoryChargePoint
	CategoryVehicleTemplate
	CategoryVehicle
	CategoryPVChargingConfig
	CategoryLiveGraph
	CategoryDayGraph
	CategoryMonthGraph
	CategoryYearGraph
	CategoryExternalTariff
	CategorySystemConfig
	CategorySmartHome
	CategoryCommand
)

var categoryNames = map[Category]string{
	CategoryUnrecognized:     "unrecognized",
	CategoryCounter:          "counter",
	CategoryGlobalCounter:    "global_counter",
	CategoryBattery:          "battery",
	CategoryPV:               "pv",
	CategoryChargePoint:      "chargepoint",
	CategoryVehicleTemplate:  "vehicle_template",
	CategoryVehicle:          "vehicle",
	CategoryPVChargingConfig: "pv_charging_config",
	CategoryLiveGraph:        "live_graph",
	CategoryDayGraph:         "day_graph",
	CategoryMonthGraph:       "month_graph",
	CategoryYearGraph:        "year_graph",
	CategoryExternalTariff:   "external_tariff",
	CategorySystemConfig:     "system_config",
	CategorySmartHome:        "smart_home",
	CategoryCommand:          "command",
}

// String returns the category's metric/log label.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// Rule maps a topic pattern to a category.
type Rule struct {
	Category Category
	Pattern  *regexp.Regexp
}

// Match reports whether the rule applies to topic.
func (r Rule) Match(topic string) bool {
	return r.Pattern.MatchString(topic)
}

// rules is evaluated top-down and the first match wins. More specific
// prefixes must precede their parents: counter/<id>/ before counter/,
// vehicle/template/ before vehicle/.
var rules = []Rule{
	{CategoryCounter, regexp.MustCompile(`(?i)^openwb/counter/[0-9]+/`)},
	{CategoryGlobalCounter, regexp.MustCompile(`(?i)^openwb/counter/`)},
	{CategoryBattery, regexp.MustCompile(`(?i)^openwb/bat/`)},
	{CategoryPV, regexp.MustCompile(`(?i)^openwb/pv/`)},
	{CategoryChargePoint, regexp.MustCompile(`(?i)^openwb/chargepoint/`)},
	{CategoryVehicleTemplate, regexp.MustCompile(`(?i)^openwb/vehicle/template/`)},
	{CategoryVehicle, regexp.MustCompile(`(?i)^openwb/vehicle/`)},
	{CategoryPVChargingConfig, regexp.MustCompile(`(?i)^openwb/general/chargemode_config/pv_charging/`)},
	{CategoryLiveGraph, regexp.MustCompile(`(?i)^openwb/graph/`)},
	{CategoryDayGraph, regexp.MustCompile(`(?i)^openwb/log/daily/`)},
	{CategoryMonthGraph, regexp.MustCompile(`(?i)^openwb/log/monthly/`)},
	{CategoryYearGraph, regexp.MustCompile(`(?i)^openwb/log/yearly/`)},
	{CategoryExternalTariff, regexp.MustCompile(`(?i)^openwb/optional/et/`)},
	{CategorySystemConfig, regexp.MustCompile(`(?i)^openwb/system/`)},
	{CategorySmartHome, regexp.MustCompile(`(?i)^openwb/legacysmarthome/`)},
	{CategoryCommand, regexp.MustCompile(`(?i)^openwb/command/`)},
}

// Rules returns a copy of the ordered classification rules.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify returns the category of the first rule matching topic, or
// CategoryUnrecognized. Only the topic text is inspected.
func Classify(topic string) Category {
	for _, r := range rules {
		if r.Match(topic) {
			return r.Category
		}
	}
	return CategoryUnrecognized
}

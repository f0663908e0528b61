package dispatch

import (
	"errors"
	"regexp"
	"strings"

	"github.com/nerrad567/gray-logic-energy/internal/model"
)

// Installation-wide PV topics, compared case-insensitively.
const (
	topicPVPower         = "openwb/pv/get/power"
	topicPVDailyExported = "openwb/pv/get/daily_exported"
)

// pvSystemLeaf matches the per-inverter metrics energymon models.
var pvSystemLeaf = regexp.MustCompile(`(?i)^openwb/pv/[0-9]+/get/(power|daily_exported|monthly_exported|yearly_exported|exported)$`)

// handlePV processes openWB/pv/... topics.
//
// Any topic carrying an inverter index creates that inverter if it is not
// known yet, so PV metrics self-heal when the component config arrives late
// or not at all.
func (d *Dispatcher) handlePV(topic, payload string) {
	index, err := ExtractIndex(topic)
	hasIndex := err == nil
	if err != nil && !errors.Is(err, ErrNoIndex) {
		d.diagnose(reasonInvalidIndex, "invalid PV index", "topic", topic, "error", err)
		return
	}
	if hasIndex && d.store.EnsurePvSystem(index) {
		d.logDebug("created PV system from metric traffic", "id", index)
	}

	switch strings.ToLower(topic) {
	case topicPVPower:
		// openWB reports generation as negative load; the summary keeps it positive.
		v := -parseNumber(payload)
		d.store.UpdateSummaries(func(src *model.SourceSummary, _ *model.UsageSummary) {
			src.PV.Power = v
		})
		return
	case topicPVDailyExported:
		v := parseNumber(payload)
		d.store.UpdateSummaries(func(src *model.SourceSummary, _ *model.UsageSummary) {
			src.PV.Energy = v
		})
		return
	}

	m := pvSystemLeaf.FindStringSubmatch(topic)
	if m == nil {
		d.diagnose(reasonUnrecognizedLeaf, "ignoring PV message", "topic", topic)
		return
	}

	v := parseNumber(payload)
	var apply func(*model.PvSystem)
	switch strings.ToLower(m[1]) {
	case "power":
		apply = func(pv *model.PvSystem) { pv.Power = v }
	case "daily_exported":
		apply = func(pv *model.PvSystem) { pv.Energy = v }
	case "monthly_exported":
		apply = func(pv *model.PvSystem) { pv.EnergyMonth = v }
	case "yearly_exported":
		apply = func(pv *model.PvSystem) { pv.EnergyYear = v }
	case "exported":
		apply = func(pv *model.PvSystem) { pv.EnergyTotal = v }
	}
	d.store.UpdatePvSystem(index, apply)
}

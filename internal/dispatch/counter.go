package dispatch

import (
	"errors"
	"strings"

	"github.com/nerrad567/gray-logic-energy/internal/model"
)

// Global counter topics, compared case-insensitively.
const (
	topicHierarchy       = "openwb/counter/get/hierarchy"
	topicHomeConsumption = "openwb/counter/set/home_consumption"
	topicHomeDailyYield  = "openwb/counter/set/daily_yield_home_consumption"
)

// ignoredCounterLeaves are published under openWB/counter/<id>/get/ but not
// modelled.
var ignoredCounterLeaves = map[string]bool{
	"config":        true,
	"fault_str":     true,
	"fault_state":   true,
	"power_factors": true,
	"imported":      true,
	"exported":      true,
	"frequency":     true,
}

// handleCounter processes openWB/counter/<id>/... topics. The id is always
// segment 2; the classifier guarantees it is numeric.
func (d *Dispatcher) handleCounter(topic, payload string) {
	id, err := SegmentIndex(topic, 2)
	if err != nil {
		d.diagnose(reasonInvalidIndex, "invalid counter id", "topic", topic, "error", err)
		return
	}
	segments := strings.Split(topic, "/")
	leaf := segment(segments, 4)

	if gridID, ok := d.store.GridMeterID(); ok && gridID == id {
		d.applyGridMeter(leaf, payload)
	}

	if segment(segments, 3) != "get" {
		return
	}

	switch leaf {
	case "power":
		v := parseNumber(payload)
		d.store.UpdateCounter(id, func(c *model.Counter) { c.Power = v })
	case "daily_imported":
		v := parseNumber(payload)
		d.store.UpdateCounter(id, func(c *model.Counter) { c.EnergyImported = v })
	case "daily_exported":
		v := parseNumber(payload)
		d.store.UpdateCounter(id, func(c *model.Counter) { c.EnergyExported = v })
	default:
		if !ignoredCounterLeaves[leaf] {
			d.diagnose(reasonUnrecognizedLeaf, "ignoring counter message", "topic", topic)
		}
	}
}

// applyGridMeter feeds the grid meter's readings into the summaries. The
// meter reports one signed power value: positive is import, anything else
// is export.
func (d *Dispatcher) applyGridMeter(leaf, payload string) {
	switch leaf {
	case "power":
		v := parseNumber(payload)
		d.store.UpdateSummaries(func(src *model.SourceSummary, use *model.UsageSummary) {
			if v > 0 {
				src.GridIn.Power = v
				use.GridOut.Power = 0
			} else {
				src.GridIn.Power = 0
				use.GridOut.Power = -v
			}
		})
	case "daily_imported":
		v := parseNumber(payload)
		d.store.UpdateSummaries(func(src *model.SourceSummary, _ *model.UsageSummary) {
			src.GridIn.Energy = v
		})
	case "daily_exported":
		v := parseNumber(payload)
		d.store.UpdateSummaries(func(_ *model.SourceSummary, use *model.UsageSummary) {
			use.GridOut.Energy = v
		})
	}
}

// handleGlobalCounter processes openWB/counter/... topics without an id.
func (d *Dispatcher) handleGlobalCounter(topic, payload string) {
	switch strings.ToLower(topic) {
	case topicHierarchy:
		d.applyHierarchy(topic, payload)
	case topicHomeConsumption:
		v := parseNumber(payload)
		d.store.UpdateSummaries(func(_ *model.SourceSummary, use *model.UsageSummary) {
			use.House.Power = v
		})
	case topicHomeDailyYield:
		v := parseNumber(payload)
		d.store.UpdateSummaries(func(_ *model.SourceSummary, use *model.UsageSummary) {
			use.House.Energy = v
		})
	default:
		d.diagnose(reasonUnrecognizedLeaf, "ignoring global counter message", "topic", topic)
	}
}

func (d *Dispatcher) applyHierarchy(topic, payload string) {
	result, err := d.sync.Apply([]byte(payload))
	if err != nil {
		reason := reasonInvalidJSON
		if errors.Is(err, ErrHierarchyTooDeep) {
			reason = reasonInvalidHierarchy
		}
		d.diagnose(reason, "discarding hierarchy snapshot", "topic", topic, "error", err)
		return
	}
	if !result.Applied {
		d.logDebug("empty hierarchy snapshot ignored")
		return
	}

	for _, t := range result.UnknownTypes {
		d.diagnose(reasonUnknownNodeType, "skipping unknown hierarchy node", "type", t)
	}

	args := []any{
		"counters", result.Counters,
		"charge_points", result.ChargePoints,
		"batteries", result.Batteries,
	}
	if result.GridMeterSet {
		args = append(args, "grid_meter_id", result.GridMeterID)
	}
	d.logInfo("hierarchy applied", args...)
}

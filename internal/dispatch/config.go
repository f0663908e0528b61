package dispatch

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/nerrad567/gray-logic-energy/internal/model"
)

// componentConfigTopic matches openWB/system/device/<n>/component/<n>/config.
var componentConfigTopic = regexp.MustCompile(`(?i)^openwb/system/device/[0-9]+/component/[0-9]+/config$`)

// componentConfig is the subset of an openWB component config energymon reads.
type componentConfig struct {
	Type string `json:"type"`
	ID   *int   `json:"id"`
	Name string `json:"name"`
}

// handlePVChargingConfig processes
// openWB/general/chargemode_config/pv_charging/<leaf>.
func (d *Dispatcher) handlePVChargingConfig(topic, payload string) {
	segments := strings.Split(topic, "/")
	switch segment(segments, 4) {
	case "bat_mode":
		var mode string
		if err := json.Unmarshal([]byte(payload), &mode); err != nil {
			d.diagnose(reasonInvalidJSON, "discarding bat_mode", "topic", topic, "error", err)
			return
		}
		d.store.SetPVBatteryPriority(mode)
	default:
		d.diagnose(reasonUnrecognizedLeaf, "ignoring PV charging config message", "topic", topic)
	}
}

// handleSystemConfig processes openWB/system/... topics. Only component
// configs are used, to name counters and to create or name inverters and
// batteries.
func (d *Dispatcher) handleSystemConfig(topic, payload string) {
	if !componentConfigTopic.MatchString(topic) {
		d.diagnose(reasonUnrecognizedLeaf, "ignoring system message", "topic", topic)
		return
	}

	var cfg componentConfig
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		d.diagnose(reasonInvalidJSON, "discarding component config", "topic", topic, "error", err)
		return
	}
	if cfg.ID == nil {
		d.diagnose(reasonInvalidJSON, "component config has no id", "topic", topic)
		return
	}
	id, name := *cfg.ID, cfg.Name

	switch cfg.Type {
	case "counter", "consumption_counter":
		// Counters only come from the hierarchy.
		d.store.UpdateCounter(id, func(c *model.Counter) { c.Name = name })
	case "inverter", "inverter_secondary":
		d.store.EnsurePvSystem(id)
		d.store.UpdatePvSystem(id, func(pv *model.PvSystem) { pv.Name = name })
	case "bat":
		d.store.EnsureBattery(id)
		d.store.UpdateBattery(id, func(b *model.Battery) { b.Name = name })
	default:
		d.logDebug("ignoring component config", "type", cfg.Type, "id", id)
	}
}

package model

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements prometheus.Collector over a Store. Values are read at
// scrape time, so the exported gauges always match the live model.
type Collector struct {
	store *Store

	counterPower    *prometheus.Desc
	counterImported *prometheus.Desc
	counterExported *prometheus.Desc
	pvPower         *prometheus.Desc
	pvEnergy        *prometheus.Desc
	summaryPower    *prometheus.Desc
	summaryEnergy   *prometheus.Desc
	entities        *prometheus.Desc
}

// NewCollector creates a collector for the given store.
func NewCollector(store *Store) *Collector {
	return &Collector{
		store: store,
		counterPower: prometheus.NewDesc(
			"energymon_counter_power_watts",
			"Current counter power in watts (positive=import)",
			[]string{"id", "name"},
			nil,
		),
		counterImported: prometheus.NewDesc(
			"energymon_counter_energy_imported_wh",
			"Counter energy imported today in watt-hours",
			[]string{"id", "name"},
			nil,
		),
		counterExported: prometheus.NewDesc(
			"energymon_counter_energy_exported_wh",
			"Counter energy exported today in watt-hours",
			[]string{"id", "name"},
			nil,
		),
		pvPower: prometheus.NewDesc(
			"energymon_pv_power_watts",
			"Current inverter power in watts as published by openWB (negative=generation)",
			[]string{"id", "name"},
			nil,
		),
		pvEnergy: prometheus.NewDesc(
			"energymon_pv_energy_wh",
			"Inverter yield in watt-hours per period",
			[]string{"id", "name", "period"},
			nil,
		),
		summaryPower: prometheus.NewDesc(
			"energymon_summary_power_watts",
			"Power of an energy flow in watts",
			[]string{"flow"},
			nil,
		),
		summaryEnergy: prometheus.NewDesc(
			"energymon_summary_energy_wh",
			"Daily energy of an energy flow in watt-hours",
			[]string{"flow"},
			nil,
		),
		entities: prometheus.NewDesc(
			"energymon_entities",
			"Number of known entities by kind",
			[]string{"kind"},
			nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.counterPower
	ch <- c.counterImported
	ch <- c.counterExported
	ch <- c.pvPower
	ch <- c.pvEnergy
	ch <- c.summaryPower
	ch <- c.summaryEnergy
	ch <- c.entities
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.store.Snapshot()

	for _, counter := range snap.Counters {
		id := strconv.Itoa(counter.ID)
		ch <- prometheus.MustNewConstMetric(c.counterPower, prometheus.GaugeValue, counter.Power, id, counter.Name)
		ch <- prometheus.MustNewConstMetric(c.counterImported, prometheus.GaugeValue, counter.EnergyImported, id, counter.Name)
		ch <- prometheus.MustNewConstMetric(c.counterExported, prometheus.GaugeValue, counter.EnergyExported, id, counter.Name)
	}

	for _, pv := range snap.PvSystems {
		id := strconv.Itoa(pv.ID)
		ch <- prometheus.MustNewConstMetric(c.pvPower, prometheus.GaugeValue, pv.Power, id, pv.Name)
		ch <- prometheus.MustNewConstMetric(c.pvEnergy, prometheus.GaugeValue, pv.Energy, id, pv.Name, "day")
		ch <- prometheus.MustNewConstMetric(c.pvEnergy, prometheus.GaugeValue, pv.EnergyMonth, id, pv.Name, "month")
		ch <- prometheus.MustNewConstMetric(c.pvEnergy, prometheus.GaugeValue, pv.EnergyYear, id, pv.Name, "year")
		ch <- prometheus.MustNewConstMetric(c.pvEnergy, prometheus.GaugeValue, pv.EnergyTotal, id, pv.Name, "total")
	}

	flows := []struct {
		name string
		flow Flow
	}{
		{"pv", snap.Sources.PV},
		{"grid_in", snap.Sources.GridIn},
		{"house", snap.Usage.House},
		{"grid_out", snap.Usage.GridOut},
	}
	for _, f := range flows {
		ch <- prometheus.MustNewConstMetric(c.summaryPower, prometheus.GaugeValue, f.flow.Power, f.name)
		ch <- prometheus.MustNewConstMetric(c.summaryEnergy, prometheus.GaugeValue, f.flow.Energy, f.name)
	}

	ch <- prometheus.MustNewConstMetric(c.entities, prometheus.GaugeValue, float64(len(snap.Counters)), "counter")
	ch <- prometheus.MustNewConstMetric(c.entities, prometheus.GaugeValue, float64(len(snap.PvSystems)), "pv")
	ch <- prometheus.MustNewConstMetric(c.entities, prometheus.GaugeValue, float64(len(snap.Batteries)), "battery")
	ch <- prometheus.MustNewConstMetric(c.entities, prometheus.GaugeValue, float64(len(snap.ChargePoints)), "chargepoint")
}

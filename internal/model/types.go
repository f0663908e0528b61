package model

import "fmt"

// Counter is a metering point. The counter whose id matches
// GlobalData.GridMeterID is the grid meter (EVU).
type Counter struct {
	ID             int
	Name           string
	Power          float64
	EnergyImported float64
	EnergyExported float64
}

// PvSystem is a PV inverter. Energy is the daily yield.
type PvSystem struct {
	ID          int
	Name        string
	Power       float64
	Energy      float64
	EnergyMonth float64
	EnergyYear  float64
	EnergyTotal float64
}

// Battery is a home storage battery. Its metrics are owned by the battery
// decoder; energymon only tracks its existence and name.
type Battery struct {
	ID             int
	Name           string
	Power          float64
	SOC            float64
	EnergyImported float64
	EnergyExported float64
}

// ChargePoint is an EV charge point.
type ChargePoint struct {
	ID     int
	Name   string
	Power  float64
	Energy float64
}

// GlobalData holds installation-wide settings.
type GlobalData struct {
	// GridMeterID is only meaningful when HasGridMeter is true.
	GridMeterID  int
	HasGridMeter bool

	// PVBatteryPriority is openWB's bat_mode for PV charging
	// (for example "ev_mode" or "bat_mode").
	PVBatteryPriority string
}

// Flow is a power reading (W) with its daily energy (Wh).
type Flow struct {
	Power  float64
	Energy float64
}

// SourceSummary aggregates where energy comes from.
type SourceSummary struct {
	PV     Flow
	GridIn Flow
}

// UsageSummary aggregates where energy goes.
type UsageSummary struct {
	House   Flow
	GridOut Flow
}

// Snapshot is a consistent copy of the whole store.
type Snapshot struct {
	Counters     []Counter
	PvSystems    []PvSystem
	Batteries    []Battery
	ChargePoints []ChargePoint
	Global       GlobalData
	Sources      SourceSummary
	Usage        UsageSummary
}

func newCounter(id int) *Counter {
	return &Counter{ID: id, Name: fmt.Sprintf("Counter %d", id)}
}

func newPvSystem(id int) *PvSystem {
	return &PvSystem{ID: id, Name: fmt.Sprintf("Inverter %d", id)}
}

func newBattery(id int) *Battery {
	return &Battery{ID: id, Name: fmt.Sprintf("Battery %d", id)}
}

func newChargePoint(id int) *ChargePoint {
	return &ChargePoint{ID: id, Name: fmt.Sprintf("Charge Point %d", id)}
}

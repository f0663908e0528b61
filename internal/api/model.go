package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-energy/internal/model"
)

// Readings that fail to parse are held as NaN (or ±Inf when out of range)
// in the model. JSON has no encoding for either, so they are served as null.

// CounterResponse is the JSON form of a model.Counter.
type CounterResponse struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	GridMeter      bool     `json:"grid_meter"`
	Power          *float64 `json:"power"`
	EnergyImported *float64 `json:"energy_imported"`
	EnergyExported *float64 `json:"energy_exported"`
}

// PvSystemResponse is the JSON form of a model.PvSystem.
type PvSystemResponse struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Power       *float64 `json:"power"`
	Energy      *float64 `json:"energy"`
	EnergyMonth *float64 `json:"energy_month"`
	EnergyYear  *float64 `json:"energy_year"`
	EnergyTotal *float64 `json:"energy_total"`
}

// BatteryResponse is the JSON form of a model.Battery.
type BatteryResponse struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Power          *float64 `json:"power"`
	SOC            *float64 `json:"soc"`
	EnergyImported *float64 `json:"energy_imported"`
	EnergyExported *float64 `json:"energy_exported"`
}

// ChargePointResponse is the JSON form of a model.ChargePoint.
type ChargePointResponse struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Power  *float64 `json:"power"`
	Energy *float64 `json:"energy"`
}

// FlowResponse is a power/energy pair.
type FlowResponse struct {
	Power  *float64 `json:"power"`
	Energy *float64 `json:"energy"`
}

// SummaryResponse is the source/usage breakdown.
type SummaryResponse struct {
	Sources struct {
		PV     FlowResponse `json:"pv"`
		GridIn FlowResponse `json:"grid_in"`
	} `json:"sources"`
	Usage struct {
		House   FlowResponse `json:"house"`
		GridOut FlowResponse `json:"grid_out"`
	} `json:"usage"`
}

// GlobalResponse is the JSON form of model.GlobalData.
type GlobalResponse struct {
	GridMeterID       *int   `json:"grid_meter_id"`
	PVBatteryPriority string `json:"pv_battery_priority"`
}

// ModelResponse is the full model snapshot.
type ModelResponse struct {
	Global       GlobalResponse        `json:"global"`
	Counters     []CounterResponse     `json:"counters"`
	PvSystems    []PvSystemResponse    `json:"pv_systems"`
	Batteries    []BatteryResponse     `json:"batteries"`
	ChargePoints []ChargePointResponse `json:"charge_points"`
	Summary      SummaryResponse       `json:"summary"`
}

// finite returns nil for NaN and ±Inf.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func toFlow(f model.Flow) FlowResponse {
	return FlowResponse{Power: finite(f.Power), Energy: finite(f.Energy)}
}

func toCounter(c model.Counter, g model.GlobalData) CounterResponse {
	return CounterResponse{
		ID:             c.ID,
		Name:           c.Name,
		GridMeter:      g.HasGridMeter && g.GridMeterID == c.ID,
		Power:          finite(c.Power),
		EnergyImported: finite(c.EnergyImported),
		EnergyExported: finite(c.EnergyExported),
	}
}

func toPvSystem(p model.PvSystem) PvSystemResponse {
	return PvSystemResponse{
		ID:          p.ID,
		Name:        p.Name,
		Power:       finite(p.Power),
		Energy:      finite(p.Energy),
		EnergyMonth: finite(p.EnergyMonth),
		EnergyYear:  finite(p.EnergyYear),
		EnergyTotal: finite(p.EnergyTotal),
	}
}

func toBattery(b model.Battery) BatteryResponse {
	return BatteryResponse{
		ID:             b.ID,
		Name:           b.Name,
		Power:          finite(b.Power),
		SOC:            finite(b.SOC),
		EnergyImported: finite(b.EnergyImported),
		EnergyExported: finite(b.EnergyExported),
	}
}

func toChargePoint(c model.ChargePoint) ChargePointResponse {
	return ChargePointResponse{
		ID:     c.ID,
		Name:   c.Name,
		Power:  finite(c.Power),
		Energy: finite(c.Energy),
	}
}

func toSummary(src model.SourceSummary, use model.UsageSummary) SummaryResponse {
	var resp SummaryResponse
	resp.Sources.PV = toFlow(src.PV)
	resp.Sources.GridIn = toFlow(src.GridIn)
	resp.Usage.House = toFlow(use.House)
	resp.Usage.GridOut = toFlow(use.GridOut)
	return resp
}

func toGlobal(g model.GlobalData) GlobalResponse {
	resp := GlobalResponse{PVBatteryPriority: g.PVBatteryPriority}
	if g.HasGridMeter {
		id := g.GridMeterID
		resp.GridMeterID = &id
	}
	return resp
}

// handleModel returns a consistent snapshot of the whole model.
func (s *Server) handleModel(w http.ResponseWriter, _ *http.Request) {
	snap := s.store.Snapshot()

	resp := ModelResponse{
		Global:       toGlobal(snap.Global),
		Counters:     make([]CounterResponse, 0, len(snap.Counters)),
		PvSystems:    make([]PvSystemResponse, 0, len(snap.PvSystems)),
		Batteries:    make([]BatteryResponse, 0, len(snap.Batteries)),
		ChargePoints: make([]ChargePointResponse, 0, len(snap.ChargePoints)),
		Summary:      toSummary(snap.Sources, snap.Usage),
	}
	for _, c := range snap.Counters {
		resp.Counters = append(resp.Counters, toCounter(c, snap.Global))
	}
	for _, p := range snap.PvSystems {
		resp.PvSystems = append(resp.PvSystems, toPvSystem(p))
	}
	for _, b := range snap.Batteries {
		resp.Batteries = append(resp.Batteries, toBattery(b))
	}
	for _, c := range snap.ChargePoints {
		resp.ChargePoints = append(resp.ChargePoints, toChargePoint(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleSummary returns the source/usage breakdown.
func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSummary(s.store.Summaries()))
}

// handleListCounters returns all counters ordered by id.
func (s *Server) handleListCounters(w http.ResponseWriter, _ *http.Request) {
	global := s.store.Global()
	counters := s.store.Counters()

	resp := make([]CounterResponse, 0, len(counters))
	for _, c := range counters {
		resp = append(resp, toCounter(c, global))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"counters": resp,
		"count":    len(resp),
	})
}

// handleGetCounter returns a single counter by id.
func (s *Server) handleGetCounter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		writeBadRequest(w, "counter id must be a non-negative integer")
		return
	}

	c, ok := s.store.Counter(id)
	if !ok {
		writeNotFound(w, "counter not found")
		return
	}
	writeJSON(w, http.StatusOK, toCounter(c, s.store.Global()))
}

// handleListPV returns all PV systems ordered by id.
func (s *Server) handleListPV(w http.ResponseWriter, _ *http.Request) {
	systems := s.store.PvSystems()

	resp := make([]PvSystemResponse, 0, len(systems))
	for _, p := range systems {
		resp = append(resp, toPvSystem(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pv_systems": resp,
		"count":      len(resp),
	})
}

// handleListBatteries returns all batteries ordered by id.
func (s *Server) handleListBatteries(w http.ResponseWriter, _ *http.Request) {
	batteries := s.store.Batteries()

	resp := make([]BatteryResponse, 0, len(batteries))
	for _, b := range batteries {
		resp = append(resp, toBattery(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"batteries": resp,
		"count":     len(resp),
	})
}

// handleListChargePoints returns all charge points ordered by id.
func (s *Server) handleListChargePoints(w http.ResponseWriter, _ *http.Request) {
	points := s.store.ChargePoints()

	resp := make([]ChargePointResponse, 0, len(points))
	for _, c := range points {
		resp = append(resp, toChargePoint(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"charge_points": resp,
		"count":         len(resp),
	})
}

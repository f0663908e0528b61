// Package recorder samples the live energy model into a time-series store
// for the history graphs.
package recorder

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-energy/internal/model"
)

// PointWriter accepts time-series points. Implemented by *influxdb.Client.
type PointWriter interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time)
}

// Logger is the logging interface used by the recorder.
type Logger interface {
	Info(msg string, args ...any)
}

// Recorder periodically writes a snapshot of the Store.
type Recorder struct {
	store    *model.Store
	writer   PointWriter
	interval time.Duration
	logger   Logger
	now      func() time.Time
}

// New creates a recorder sampling store every interval.
func New(store *model.Store, writer PointWriter, interval time.Duration, logger Logger) *Recorder {
	return &Recorder{
		store:    store,
		writer:   writer,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run samples until ctx is cancelled. The first sample is taken one
// interval after start so the model has time to fill from retained topics.
func (r *Recorder) Run(ctx context.Context) {
	if r.logger != nil {
		r.logger.Info("history recorder started", "interval", r.interval)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if r.logger != nil {
				r.logger.Info("history recorder stopped")
			}
			return
		case <-ticker.C:
			r.Record()
		}
	}
}

// Record writes one sample of the current model.
func (r *Recorder) Record() {
	snap := r.store.Snapshot()
	ts := r.now()

	r.write("grid", nil, map[string]float64{
		"import_power":  snap.Sources.GridIn.Power,
		"import_energy": snap.Sources.GridIn.Energy,
		"export_power":  snap.Usage.GridOut.Power,
		"export_energy": snap.Usage.GridOut.Energy,
	}, ts)

	r.write("pv", nil, map[string]float64{
		"power":  snap.Sources.PV.Power,
		"energy": snap.Sources.PV.Energy,
	}, ts)

	r.write("house", nil, map[string]float64{
		"power":  snap.Usage.House.Power,
		"energy": snap.Usage.House.Energy,
	}, ts)

	for _, c := range snap.Counters {
		r.write("counter", map[string]string{"id": strconv.Itoa(c.ID), "name": c.Name}, map[string]float64{
			"power":           c.Power,
			"energy_imported": c.EnergyImported,
			"energy_exported": c.EnergyExported,
		}, ts)
	}

	for _, pv := range snap.PvSystems {
		r.write("pv_system", map[string]string{"id": strconv.Itoa(pv.ID), "name": pv.Name}, map[string]float64{
			"power":        pv.Power,
			"energy":       pv.Energy,
			"energy_month": pv.EnergyMonth,
			"energy_year":  pv.EnergyYear,
			"energy_total": pv.EnergyTotal,
		}, ts)
	}
}

// write drops non-finite values, which line protocol cannot carry, and
// skips points left without fields.
func (r *Recorder) write(measurement string, tags map[string]string, values map[string]float64, ts time.Time) {
	fields := make(map[string]any, len(values))
	for k, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		fields[k] = v
	}
	if len(fields) == 0 {
		return
	}
	r.writer.WritePoint(measurement, tags, fields, ts)
}

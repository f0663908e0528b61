// Package model holds energymon's live view of an openWB installation.
//
// The Store is the single owner of all domain entities:
//   - Counters (grid meters and sub-meters), one of which is the grid meter
//   - PV systems (inverters)
//   - Batteries and charge points
//   - Global configuration (grid meter id, PV battery priority)
//   - Source and usage summaries for the energy flow view
//
// Entities are created and mutated only through the Store's narrow
// mutators; readers get copies. The dispatcher is the only writer in
// practice, while the API, recorder and Prometheus collector read.
//
// Numeric fields carry whatever openWB published. A payload that does not
// parse as a number is stored as NaN, so consumers must be prepared for
// non-finite values.
package model

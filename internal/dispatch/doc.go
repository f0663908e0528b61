// Package dispatch routes openWB MQTT messages into the live energy model.
//
// Every inbound (topic, payload) pair passes once through the classifier,
// which picks exactly one Category from an ordered rule list. The matching
// handler then either:
//   - rebuilds the device topology from an openWB/counter/get/hierarchy
//     snapshot (Synchronizer),
//   - applies a scalar metric to an existing entity (counters, PV, summaries),
//   - applies a configuration message (component names, PV battery mode),
//   - reports a command error addressed to this client, or
//   - hands the message to a registered peer decoder (batteries, charge
//     points, vehicles, graphs, tariffs, smart home).
//
// # Fault Handling
//
// No message is ever fatal. Unrecognized topics and leaves are dropped,
// malformed JSON is logged and discarded leaving prior state intact, and
// numeric payloads that do not parse are stored as NaN. Metric messages for
// unknown ids are ignored, except PV which creates the inverter on first
// reference.
//
// # Concurrency
//
// HandleMessage processes one message at a time to completion. The model
// Store is separately synchronised so API readers never see a torn update.
//
// # Usage
//
//	d, err := dispatch.New(dispatch.Options{
//	    Store:    store,
//	    ClientID: cfg.MQTT.Broker.ClientID,
//	    Logger:   log,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := d.Start(transport); err != nil {
//	    return err
//	}
//	defer d.Stop()
package dispatch

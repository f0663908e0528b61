// Package mqtt provides MQTT client connectivity for energymon.
//
// This package manages:
//   - Connection to the openWB broker (Mosquitto) with auto-reconnect
//   - Topic subscriptions with wildcard support, restored after reconnect
//   - Last Will and Testament (LWT) on energymon's own status topic
//   - Connection health monitoring
//
// # Architecture
//
// energymon is a read-mostly consumer of the openWB topic tree. The broker
// delivers (topic, payload) pairs which are handed to the dispatcher; this
// package knows nothing about openWB semantics.
//
//	openWB ↔ MQTT Broker → energymon (dispatch → model → API/history)
//
// Handlers are wrapped with panic recovery so a single bad message can never
// take the subscription down.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe("openWB/counter/#", 0,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
package mqtt

package dispatch

import "fmt"

// baseSubscriptions are the openWB subtrees energymon listens to. Graph
// topics (openWB/graph, openWB/log) are requested on demand by the graph
// layer and are not subscribed here.
var baseSubscriptions = []string{
	"openWB/counter/#",
	"openWB/bat/#",
	"openWB/pv/#",
	"openWB/chargepoint/#",
	"openWB/vehicle/#",
	"openWB/general/chargemode_config/pv_charging/#",
	"openWB/optional/et/#",
	"openWB/system/#",
	"openWB/LegacySmartHome/#",
}

// CommandTopic returns the command channel subscription for a client.
//
// Example: openWB/command/wallpanel/#
func CommandTopic(clientID string) string {
	return fmt.Sprintf("openWB/command/%s/#", clientID)
}

// subscriptionsFor returns the full subscription list for a client.
func subscriptionsFor(clientID string) []string {
	out := make([]string, 0, len(baseSubscriptions)+1)
	out = append(out, baseSubscriptions...)
	return append(out, CommandTopic(clientID))
}

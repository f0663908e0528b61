package mqtt

import "fmt"

// TopicPrefixStatus is the base for energymon's own status topics. It lives
// outside the openWB namespace so energymon never writes into openWB state.
const TopicPrefixStatus = "energymon"

// StatusTopic returns the retained online/offline status topic for a client.
//
// Example: energymon/wallpanel/status
func StatusTopic(clientID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixStatus, clientID)
}

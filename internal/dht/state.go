package dht

// State is the position of the sampler in the handshake.
type State uint8

const (
	Idle State = iota
	Syncing
	AwaitingAckLow
	AwaitingAckHigh
	ReceivingBit
	AwaitingEndGuard
	Complete
	Failed
)

var stateNames = [...]string{
	Idle:             "idle",
	Syncing:          "syncing",
	AwaitingAckLow:   "awaiting ack low",
	AwaitingAckHigh:  "awaiting ack high",
	ReceivingBit:     "receiving bit",
	AwaitingEndGuard: "awaiting end guard",
	Complete:         "complete",
	Failed:           "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

package types

// Enum values for the wallet connection state
type ConnectionState string

const (
	StateDisconnected ConnectionState = "DISCONNECTED"
	StateConnecting   ConnectionState = "CONNECTING"
	StateConnected    ConnectionState = "CONNECTED"
)

func (s ConnectionState) String() string {
	return string(s)
}

// QualifiedStatesForConnect returns the states a connect attempt may start from.
// Account switches re-enter Connected without a handshake.
func QualifiedStatesForConnect() []ConnectionState {
	return []ConnectionState{StateDisconnected}
}

// QualifiedStatesForDisconnect returns the states a disconnect may start from
func QualifiedStatesForDisconnect() []ConnectionState {
	return []ConnectionState{StateConnecting, StateConnected}
}

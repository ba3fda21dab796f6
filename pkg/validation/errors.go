package validation

// EncryptedSentinel marks a simulation failure inside confidential contract execution.
// The simulator cannot see through encrypted errors, so such failures do not block the message.
const EncryptedSentinel = "encrypted:"

// SimulationError is a dry run the network refused to execute.
type SimulationError struct {
	Log string
	// Inconclusive is set when the failure carries EncryptedSentinel.
	Inconclusive bool
}

func (e *SimulationError) Error() string {
	return e.Log
}

// TransportError means the simulation request itself failed.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

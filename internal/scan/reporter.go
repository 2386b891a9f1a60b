package scan

// Reporter receives per-port open notifications while a scan is running.
// Implementations live in the presentation layer; the engine only emits the
// event, and only when the scan is not quiet.
type Reporter interface {
	PortOpen(port uint16)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(port uint16)

// PortOpen implements Reporter.
func (f ReporterFunc) PortOpen(port uint16) {
	f(port)
}

// Package client implements the connecting side of tprobe. A ProbeClient
// connects to a probe server, requests an upload or a download and runs the
// transfer until the connection fails, the configured duration expires or the
// context is cancelled. Ending the run by duration or context is a success.
package client

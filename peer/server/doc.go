// Package server implements the listening side of tprobe.
//
// A ProbeServer accepts one connection at a time. For every connection it
// reads the command of the client, runs the matching transfer loop until the
// connection fails and then goes back to listening. While a session runs a
// probe.Sampler logs the transfer rate once per second.
//
// Usage:
//
//	s, err := server.NewProbeServer(config, tcp.NewTCPServerConnector(), stats.NewRecorder())
//	if err != nil {
//		return err
//	}
//	if err := s.ListenAndServe(ctx); err != nil {
//		return err
//	}
//
// Finished sessions are recorded in the stats.Recorder, in a per-peer registry
// (see Peers) and passed to the hook registered with OnSessionEnd.
package server

// Package probe implements the bulk transfer engine of tprobe. It contains
// everything that happens on an already established connection: the one-byte
// session protocol, the send and receive loops, payload validation and the
// background sampler that reports throughput while a transfer runs.
//
// The package focuses on:
//   - A minimal handshake selecting the transfer direction ('U' / 'D')
//   - Continuous streaming of a fixed-size buffer in either direction
//   - Optional word-wise validation of received bytes against a fill pattern
//   - Periodic, cleanly stoppable rate sampling
//
// Key Components:
//
//   - ByteCounter: Session-scoped atomic counter of transferred bytes. The
//     transfer loop only increments it, the sampler only reads it.
//
//   - Sampler: Background goroutine waking once per interval (or on Stop) and
//     reporting the counter delta since its previous wake through a ReportFunc.
//
//   - Send / Receive: The transfer loops. Both run until an I/O failure (or a
//     validation failure on the receiving side). There is no other way to end
//     a transfer, closing the connection is the cancellation mechanism.
//
//   - Respond / Initiate: The two sides of the session protocol. The initiator
//     writes a Command, the responder reads it and both enter the transfer loop
//     in opposite directions.
//
// Error Types:
//
//	ProtocolError, IoError, ValidationError and ConfigError classify every
//	failure. All of them match their sentinel via errors.Is (ErrProtocol,
//	ErrIO, ErrValidation, ErrConfig).
//
// Thread Safety:
//
//	ByteCounter and Sampler are safe for concurrent use. Send, Receive,
//	Respond and Initiate are meant to be called from a single goroutine per
//	connection.
package probe

// Package common provides the configuration structures and the logging setup
// shared by the probe server, the probe client and the command line interface.
//
// Key Components:
//
//   - ServerConfig / ClientConfig: Validated configuration of the two
//     orchestrators. Both combine a TransportConfig (transport name, endpoint,
//     socket options) with a ProbeConfig (I/O timeout, buffer size, payload
//     validation, log level) and render themselves for the startup log.
//
//   - Logger: Custom implementation of dragonboat's logger.ILogger. Every
//     package obtains its logger with logger.GetLogger(name); InitLoggers
//     installs the factory and applies the configured level to all of them.
package common

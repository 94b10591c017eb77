// Package cmd implements the command-line interface of tprobe. It provides a
// hierarchical command structure for running both sides of a probe.
//
// The package is organized into several subpackages:
//
//   - serve: Command for starting the listening side (tprobe serve)
//   - connect: Command for running a session against a server (tprobe connect)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set as an environment variable TPROBE_<FLAG>, dashes
// replaced by underscores (e.g. TPROBE_BUFFER_SIZE=1m). The files .env and
// .env.local are loaded first.
//
// See tprobe -help for a list of all commands.
package cmd

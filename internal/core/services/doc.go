// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Beyond the driven ports, services reach only for the chunking and
// normalisation helpers, ID generation and the verbose logger; all
// I/O goes through the ports.
package services

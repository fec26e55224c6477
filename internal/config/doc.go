// Package config loads the settings of the ICS server and of icsctl.
//
// The server reads the environment, then its command line, then the JSON
// file named by either of them; a later source overrides the non-zero
// fields of an earlier one and defaults fill the rest. [GetStructuredConfig]
// validates every group, [GetClientConfig] only the adapter.
package config

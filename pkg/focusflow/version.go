// Package focusflow holds release metadata for the focusflow module.
package focusflow

// Version is the release version reported by the CLI and the share server.
const Version = "0.1.0"

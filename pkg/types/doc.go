// Package types defines the JSON request and response bodies shared by the
// HTTP services and the dsctl client. Field names are the wire names; the
// computational core never sees these types.
package types

// Package main provides the entry point for the zonecheck CLI.
//
// zonecheck asks a risk-assessment service how safe the current location
// is, and renders the answer as a Green, Yellow or Red zone with reasons
// and recommended actions.
//
// Usage:
//
//	zonecheck config add-address --number 1 --street "Main St" --city Cambridge --state MA --zip 02139
//	zonecheck config set-email me@example.com
//	zonecheck check --lat 42.36 --lon -71.09
//
// See --help for all available options.
package main

func main() {
	Execute()
}

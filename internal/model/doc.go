// Package model defines the data structures shared by the zonecheck engine.
//
// This package contains the following main types:
//   - Address and UserConfig: the locally held user configuration
//   - CheckRequest and RawResponse: the wire shapes of the risk-assessment service
//   - Analysis: the canonical, normalized result consumed by every view
//   - Zone and Presentation: the risk level and its rendering parameters
//   - CheckResult: one completed check, as rendered and stored in history
//
// The error taxonomy used across the engine lives in errors.go.
package model

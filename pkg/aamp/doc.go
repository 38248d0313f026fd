// Package aamp is a client library for Axis Audio Manager Pro.
//
// It combines two server surfaces behind a single Manager: the
// documented digest-authenticated API (target and file listing,
// one-shot playback) and the web client's unofficial API (volume
// calibration, device-to-zone assignment, test tones, hardware
// metadata). Unofficial features are enabled by supplying the web
// interface credentials; without them the corresponding operations
// fail with ErrUnofficialDisabled.
//
// Targets come back as typed views selected by the server's type
// string: PhysicalZone and Site carry volume calibration, Device
// carries hardware metadata and zone assignment, and anything the
// library does not recognize stays a generic AudioTarget that can
// still play audio and enumerate children.
//
// Example:
//
//	mgr, err := aamp.New(aamp.Config{
//	    BaseURL:     "https://audiomanager.local",
//	    APIUsername: "api",
//	    APIPassword: "secret",
//	    WebUsername: "admin",
//	    WebPassword: "hunter2",
//	})
//	zones, err := mgr.AudioZones(ctx)
//	sessionID, err := zones[0].PlayAudioFile(ctx, "aud_1")
//
// For lower-level control, see the official and unofficial packages.
package aamp

// Package engines contains the synthesis backends: a cloud engine that
// talks to the Google Translate TTS endpoint and a local engine that renders
// through an on-device Driver (espeak-ng by default). NewManager wires both
// into a tts.Manager.
package engines

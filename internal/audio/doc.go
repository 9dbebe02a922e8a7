// Package audio plays synthesized audio files by handing them to an
// external program. A Dispatcher walks an ordered chain of launchers and
// stops at the first one that starts.
package audio

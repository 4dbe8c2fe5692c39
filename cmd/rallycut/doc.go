// Command rallycut analyzes table tennis match videos, lets the operator
// curate the detected rallies, and compiles the keepers into a highlight
// reel.
package main

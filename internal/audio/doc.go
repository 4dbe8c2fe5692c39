// Package audio turns raw PCM samples into discrete ball-hit events and
// continuous crowd/motion intensity curves. Analysis is a pure function of
// its inputs; callers cache results keyed by source identity.
package audio

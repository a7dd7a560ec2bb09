// Package deps checks that the external executables voicedecoder shells out
// to can be resolved.
package deps

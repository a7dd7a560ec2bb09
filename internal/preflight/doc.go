// Package preflight provides readiness checks for the executables and
// filesystem paths voicedecoder depends on.
//
// These checks run in two contexts:
//   - The CLI "voicedecoder doctor" command prints every result.
//   - The service refuses to start when a required check fails, so a
//     misconfigured host is caught before the first upload.
package preflight

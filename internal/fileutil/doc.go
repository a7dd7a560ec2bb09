// Package fileutil holds small file helpers shared by the CLI.
package fileutil

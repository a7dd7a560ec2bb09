// Package testsupport holds fixtures shared by package tests: temp-dir
// configs, stub executables, and history stores.
package testsupport

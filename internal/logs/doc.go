// Package logs reads the voicedecoder log file for the `logs` command.
//
// Tail returns the last lines with bounded memory and the byte offset where
// reading stopped. Follow polls from that offset and hands over complete
// lines only, so a record written in two chunks is never split.
package logs

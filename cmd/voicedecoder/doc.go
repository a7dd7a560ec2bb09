// Command voicedecoder transcribes speech in local audio and video files.
//
// The transcribe command runs the pipeline once and prints the transcript;
// serve exposes the same pipeline over a local HTTP/WebSocket API. Supporting
// commands estimate processing time, report the compute device, list media
// streams, browse run history, and check the host setup.
package main

// Command reel tracks video files in a directory, uploads them to a hosting
// provider, and records playback metadata in JSON sidecar files.
package main

package internal

// Version is the sentencecraft release, overridden at build time via -ldflags.
var Version = "0.3.0"

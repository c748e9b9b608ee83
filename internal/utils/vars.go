package utils

const DefaultBufferSize = 1024 * 1024 * 8 // 8MB buffer

// DefaultPlaceholder is the literal replaced with the memory file path in
// the target command's arguments.
const DefaultPlaceholder = "{{memfd}}"

// DefaultMaxAttempts is how many times a single chunk is tried before the
// whole download is aborted.
const DefaultMaxAttempts = 3

// MemfdPathEnv is exported to the launched program alongside argument
// substitution, for programs that prefer reading the path from the
// environment.
const MemfdPathEnv = "MEMFD_PATH"

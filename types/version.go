package types

// Version is the canonical project version.
// The CLI, the journal record format, and the decode report all share this
// version under the lockstep versioning policy.
const Version = "0.4.2"

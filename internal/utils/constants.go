package utils

// ApplicationName is the binary name used in usage text and version output.
const ApplicationName = "rcat"

// RootPathEnvironmentVariable supplies the root path when no positional argument is given.
const RootPathEnvironmentVariable = "RCAT_PATH"

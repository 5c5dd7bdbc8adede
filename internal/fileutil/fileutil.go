// Package fileutil holds file permission modes shared by the writers.
package fileutil

import "os"

// OwnerReadWrite is the file permission mode for document output files,
// which may carry private schema content (owner read/write only).
const OwnerReadWrite os.FileMode = 0o600

// OwnerDir is the permission mode for directories created for output and
// log files.
const OwnerDir os.FileMode = 0o700

// Package loaders turns corpus files into plain-text documents.
//
// Each file type has its own loader under a subpackage (plaintext,
// markdown, pdf). The Registry selects a loader by file extension and
// drives whole-directory loading, skipping files that fail to parse so
// one corrupt file never aborts an index rebuild.
package loaders

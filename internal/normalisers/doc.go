// Package normalisers turns raw fetched bytes into document text.
// Each sub-package handles specific MIME types; Registry dispatches a raw
// document to the normaliser registered for its type.
package normalisers

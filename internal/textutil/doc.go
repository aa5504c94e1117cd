// Package textutil provides the text normalization shared by preset naming and
// keyword matching.
//
// Keywords and filenames are compared after NFC normalization and Unicode
// lower-casing so a keyword typed on one platform matches filenames stored in
// decomposed form on another. Preset names are reduced to lowercase ASCII
// tokens before they become file names.
package textutil

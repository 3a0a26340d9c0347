// Package tag encodes checksums into bracketed filename tokens and parses
// them back.
//
// The canonical form is "[v<size><CRC32>]" with a decimal size carrying no
// leading zeros and exactly eight uppercase hex digits. Two older encodings,
// "[v-<CRC32>]" and "[<CRC32>]", are supported as configurable alternatives.
// Decoding is lenient about absence (it reports false rather than failing)
// while Inspect lets the verifier tell a malformed tag apart from none.
package tag

// Package scan lists candidate archive files below a directory.
package scan

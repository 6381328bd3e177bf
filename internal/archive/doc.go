// Package archive compresses completed run directories into tar.gz archives
// using pigz for parallel compression. Exit code 1 from GNU tar ("file
// changed as we read it") is a warning, not a failure; the archive is still
// kept. Fatal exits remove the partial temp file and leave the uncompressed
// run directory in place.
package archive

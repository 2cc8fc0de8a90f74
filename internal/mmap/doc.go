// Package mmap provides memory-mapped file access for the input and output
// buffers.
//
// # Overview
//
// Both roles map the same two files. The input is mapped read-only; the
// output is mapped read-write with MAP_SHARED, so bytes written by one
// process are visible to the other through the page cache and reach the file
// once flushed.
//
// # Usage
//
//	in, err := mmap.Map(inputFile, size, mmap.ReadOnly)
//	if err != nil { ... }
//	defer in.Close()
//
//	out, err := mmap.Map(outputFile, outSize, mmap.ReadWrite)
//	if err != nil { ... }
//	copy(out.Bytes(), data)
//	if err := out.Flush(); err != nil { ... } // msync(MS_SYNC)
//	out.Close()
//
// The file must already have the mapped size: extend it with Truncate before
// calling Map, since writes past the end of the file fault.
//
// # Thread Safety
//
// Close is idempotent and protected by atomic operations. Callers must ensure
// nobody touches Bytes() after Close() returns.
package mmap

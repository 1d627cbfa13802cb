// Decode and encode Linux kernel initramfs-style cpio "newc" archives.
//
// [Reader] walks the records of an archive already held in memory, stopping
// at the TRAILER!!! sentinel. [Writer] produces well-formed archives, which
// is mostly useful for building test fixtures. [Sniff] and
// [CompressReaderMap] identify and unwrap the compression schemes the kernel
// accepts.
//
// This implementation follows the [documented kernel buffer format].
//
// [documented kernel buffer format]: https://www.kernel.org/doc/html/latest/driver-api/early-userspace/buffer-format.html
package cpio

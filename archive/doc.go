// Open filesystem images and index their entries.
//
// An image's format is identified from magic bytes alone. cpio newc archives,
// optionally wrapped in gzip, zstd, xz, lzma, lz4 or bzip2, are decoded
// natively. ISO 9660 and EROFS images are listed by external tools (isoinfo
// and dump.erofs) and normalized into the same [Entry] model, without content.
//
// Every path is kept in the [Normalize]d form, relative to the archive root.
package archive

// Audit Linux filesystem archive images, such as initramfs and rootfs
// payloads, without mounting or extracting them.
//
// The work is split across a few packages that share one data model:
//
//   - [go.pdmccormick.com/fsdbg/cpio] decodes cpio "newc" record streams.
//   - [go.pdmccormick.com/fsdbg/archive] opens an image, detects its format
//     from magic bytes and builds an immutable, path-keyed [archive.Index].
//   - [go.pdmccormick.com/fsdbg/symlink] resolves symlink chains inside the
//     archive's own namespace.
//   - [go.pdmccormick.com/fsdbg/checklist] evaluates fixed requirement sets
//     against an index.
//   - [go.pdmccormick.com/fsdbg/diff] compares two indices.
//
// This package holds the error catalog shared by all of them. Every error
// that aborts an operation carries a stable [Code], suitable for scripting.
//
// [archive.Index]: https://pkg.go.dev/go.pdmccormick.com/fsdbg/archive#Index
package fsdbg

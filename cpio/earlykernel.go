package cpio

import "strings"

// The Linux kernel can load x86 microcode updates from an initramfs very early
// in the boot process, from an uncompressed archive that precedes the main
// (usually compressed) one. See [The Linux Microcode Loader].
//
// [The Linux Microcode Loader]: https://www.kernel.org/doc/html/latest/arch/x86/microcode.html
const (
	MicrocodeX86Path           = "kernel/x86/microcode/"
	MicrocodePath_AuthenticAMD = "kernel/x86/microcode/AuthenticAMD.bin"
	MicrocodePath_GenuineIntel = "kernel/x86/microcode/GenuineIntel.bin"
)

// Reports whether every non-directory name belongs to the early microcode
// tree. Such an archive carries nothing but microcode and is normally
// followed by the real initramfs.
func EarlyMicrocodeOnly(names []string) bool {
	var found bool
	for _, name := range names {
		name = strings.TrimPrefix(strings.TrimPrefix(name, "./"), "/")
		if strings.HasPrefix(MicrocodeX86Path, name+"/") || name == "." || name == "" {
			continue
		}
		if !strings.HasPrefix(name, MicrocodeX86Path) {
			return false
		}
		found = true
	}
	return found
}

package checklist

import "slices"

// The live ISO boot layout: kernel, initramfs images, the EROFS root and the
// UEFI boot path.
var liveISO = slices.Concat(
	group{Check: IsDirectory, Category: Directories}.of(
		"boot",
		"live",
		"EFI",
		"EFI/BOOT",
	),
	group{Check: IsDirectory, Criticality: Optional, Category: Directories}.of(
		"EFI/Linux",
		"loader",
		"boot/uki",
		"live/overlay",
	),

	[]Requirement{
		{Path: "boot/vmlinuz", Check: Regular, Category: Other, Reason: "no kernel to boot"},
		{Path: "boot/initramfs-live.img", Check: Regular, Category: Other, Reason: "live boot impossible"},
		{Path: "boot/initramfs-installed.img", Check: Regular, Criticality: Optional, Category: Other, Reason: "installation will lack an initramfs"},
		{Path: "live/filesystem.erofs", Check: Regular, Category: Other, Reason: "no root filesystem"},
		{Path: "EFI/BOOT/BOOTX64.EFI", Check: Regular, Category: Binaries, Reason: "UEFI boot impossible"},
		{Path: "efiboot.img", Check: Exists, Criticality: Optional, Category: Other, Reason: "no El Torito UEFI image"},
		{Path: "loader/loader.conf", Check: Exists, Criticality: Optional, Category: EtcFiles},
		{Path: "EFI/Linux/*.efi", Check: GlobCountAtLeast, N: 1, Criticality: Optional, Category: Binaries},
	},
)

package checklist

import "slices"

// A busybox initramfs that finds the boot medium, mounts the EROFS root with
// an overlay on top and switches to it.
var liveInitramfs = slices.Concat(
	group{Check: IsDirectory, Category: Directories}.of(
		"bin",
		"dev",
		"proc",
		"sys",
		"tmp",
		"mnt",
		"lib/modules",
		"rootfs",
		"overlay",
		"newroot",
		"live-overlay",
	),

	[]Requirement{
		{Path: "bin/busybox", Check: Executable, Category: Binaries, Reason: "no shell commands available"},
		{Path: "bin/busybox", Check: Regular, Category: Binaries},
		{Path: "init", Check: Executable, Category: Binaries, Reason: "kernel will panic"},
		{Path: "init", Check: SymlinkResolves, Category: Binaries, Reason: "kernel will panic"},
	},

	// Applets the init script cannot do without
	group{Check: SymlinkResolves, Category: Symlinks, Prefix: "bin/"}.of(
		"sh",
		"mount",
		"mkdir",
		"insmod",
		"losetup",
		"switch_root",
	),
	group{Check: SymlinkResolves, Criticality: Optional, Category: Symlinks, Prefix: "bin/"}.of(
		"umount",
		"cat",
		"ls",
		"ln",
		"rm",
		"cp",
		"mv",
		"chmod",
		"chown",
		"mknod",
		"find",
		"echo",
		"grep",
		"sed",
		"head",
		"test",
		"[",
		"sleep",
		"modprobe",
		"mount.loop",
		"xz",
		"gunzip",
	),

	modules("lib/modules", Optional,
		"virtio_blk",
		"virtio_scsi",
		"sr_mod",
		"cdrom",
		"isofs",
		"loop",
		"overlay",
		"erofs",
	),
	[]Requirement{
		{Path: "lib/modules/**/modules.dep", Check: GlobCountAtLeast, N: 1, Criticality: Optional, Category: KernelModules, Reason: "modprobe won't work, but insmod will"},
	},
)

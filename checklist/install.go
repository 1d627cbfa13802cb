package checklist

import "slices"

// An initramfs that boots initrd.target and switches to the installed root.
var installInitramfs = slices.Concat(
	group{Check: Executable, Category: Binaries}.of(
		"usr/lib/systemd/systemd",
		"usr/lib/systemd/systemd-udevd",
		"usr/lib/systemd/systemd-journald",
		"usr/lib/systemd/systemd-modules-load",
		"usr/lib/systemd/systemd-sysctl",
		"usr/lib/systemd/systemd-fsck",
		"usr/lib/systemd/systemd-remount-fs",
		"usr/lib/systemd/systemd-sulogin-shell",
		"usr/lib/systemd/systemd-shutdown",
		"usr/lib/systemd/systemd-executor",
		"usr/lib/systemd/systemd-makefs",
		"usr/bin/systemctl",
		"usr/bin/systemd-tmpfiles",
		"usr/bin/udevadm",
		"usr/sbin/modprobe",
		"usr/sbin/insmod",
		"usr/bin/kmod",
		"usr/sbin/fsck",
		"usr/sbin/fsck.ext4",
		"usr/sbin/e2fsck",
		"usr/sbin/blkid",
		"usr/bin/mount",
		"usr/bin/umount",
		"usr/sbin/switch_root",
		"usr/bin/bash",
		"usr/bin/sh",
	),

	group{Check: Exists, Category: Units, Prefix: "usr/lib/systemd/system/"}.of(
		"initrd.target",
		"initrd-root-fs.target",
		"initrd-root-device.target",
		"initrd-switch-root.target",
		"initrd-fs.target",
		"sysinit.target",
		"basic.target",
		"local-fs.target",
		"local-fs-pre.target",
		"slices.target",
		"sockets.target",
		"paths.target",
		"timers.target",
		"swap.target",
		"emergency.target",
		"rescue.target",
		"systemd-journald.service",
		"systemd-udevd.service",
		"systemd-udev-trigger.service",
		"systemd-modules-load.service",
		"systemd-sysctl.service",
		"systemd-fsck@.service",
		"systemd-fsck-root.service",
		"systemd-remount-fs.service",
		"initrd-switch-root.service",
		"initrd-cleanup.service",
		"initrd-udevadm-cleanup-db.service",
		"initrd-parse-etc.service",
		"systemd-journald.socket",
		"systemd-journald-dev-log.socket",
		"systemd-udevd-control.socket",
		"systemd-udevd-kernel.socket",
	),

	[]Requirement{
		{Path: "init", Check: SymlinkPointsTo, Target: "/usr/lib/systemd/systemd", Category: Symlinks},
		{Path: "init", Check: SymlinkResolves, Category: Symlinks, Reason: "kernel will panic"},
	},
	mergedUsr,

	group{Check: Exists, Category: EtcFiles}.of(
		"etc/initrd-release",
		"etc/passwd",
		"etc/group",
		"etc/shadow",
		"etc/nsswitch.conf",
	),

	group{Check: Exists, Category: UdevRules, Prefix: "usr/lib/udev/rules.d/", Reason: "needed for /dev/disk/by-uuid"}.of(
		"50-udev-default.rules",
		"60-block.rules",
		"60-persistent-storage.rules",
		"80-drivers.rules",
		"99-systemd.rules",
	),

	group{Check: Exists, Criticality: Optional, Category: Binaries, Prefix: "usr/lib/udev/", Reason: "udev device identification"}.of(
		"ata_id",
		"scsi_id",
		"cdrom_id",
		"mtd_probe",
		"v4l_id",
	),

	group{Check: Exists, Category: Binaries, Prefix: "usr/lib/systemd/system-generators/", Reason: "needed for root= parsing"}.of(
		"systemd-fstab-generator",
	),
	group{Check: Exists, Criticality: Optional, Category: Binaries, Prefix: "usr/lib/systemd/system-generators/"}.of(
		"systemd-gpt-auto-generator",
		"systemd-debug-generator",
	),

	group{Check: Exists, Criticality: Optional, Category: EtcFiles, Prefix: "usr/lib/tmpfiles.d/", Reason: "systemd-tmpfiles"}.of(
		"static-nodes-permissions.conf",
		"systemd.conf",
		"tmp.conf",
		"var.conf",
	),

	group{Check: Exists, Category: Symlinks, Prefix: "usr/lib/systemd/system/", Reason: "service not enabled"}.of(
		"sysinit.target.wants/systemd-modules-load.service",
		"sysinit.target.wants/systemd-sysctl.service",
		"sysinit.target.wants/systemd-udevd.service",
		"sysinit.target.wants/systemd-udev-trigger.service",
		"sockets.target.wants/systemd-journald-dev-log.socket",
		"sockets.target.wants/systemd-journald.socket",
		"sockets.target.wants/systemd-udevd-control.socket",
		"sockets.target.wants/systemd-udevd-kernel.socket",
		"initrd.target.wants/initrd-parse-etc.service",
		"initrd.target.wants/initrd-udevadm-cleanup-db.service",
		"initrd-switch-root.target.wants/initrd-cleanup.service",
	),

	group{Check: IsDirectory, Category: Directories}.of(
		"usr/bin",
		"usr/sbin",
		"usr/lib",
		"usr/lib64",
		"etc",
		"dev",
		"proc",
		"sys",
		"run",
		"tmp",
		"var",
		"usr/lib/systemd",
		"usr/lib/systemd/system",
		"usr/lib/systemd/system/initrd.target.wants",
		"usr/lib/systemd/system/sysinit.target.wants",
		"usr/lib/systemd/system-generators",
		"etc/systemd/system",
		"usr/lib/modules",
		"usr/lib/firmware",
		"usr/lib/udev",
		"usr/lib/udev/rules.d",
	),

	modules("usr/lib/modules", Optional,
		"ext4",
		"btrfs",
		"xfs",
		"vfat",
		"nvme",
		"ahci",
		"sd_mod",
		"virtio_blk",
		"virtio_scsi",
		"dm_mod",
	),
	[]Requirement{
		{Path: "usr/lib/modules/*/modules.dep", Check: GlobCountAtLeast, N: 1, Criticality: Optional, Category: KernelModules, Reason: "modprobe needs it"},
	},
)

// The merged /usr layout shared by initramfs and rootfs images.
var mergedUsr = []Requirement{
	{Path: "bin", Check: SymlinkPointsTo, Target: "usr/bin", Category: Symlinks, Reason: "merged /usr broken"},
	{Path: "sbin", Check: SymlinkPointsTo, Target: "usr/sbin", Category: Symlinks, Reason: "merged /usr broken"},
	{Path: "lib", Check: SymlinkPointsTo, Target: "usr/lib", Category: Symlinks, Reason: "merged /usr broken"},
	{Path: "lib64", Check: SymlinkPointsTo, Target: "usr/lib64", Category: Symlinks, Reason: "merged /usr broken"},
}

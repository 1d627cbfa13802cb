package checklist

import "slices"

// A complete installed root filesystem.
var rootfs = slices.Concat(
	group{Check: IsDirectory, Category: Directories}.of(
		"boot",
		"dev",
		"etc",
		"home",
		"mnt",
		"opt",
		"proc",
		"root",
		"run",
		"srv",
		"sys",
		"tmp",
		"usr/bin",
		"usr/sbin",
		"usr/lib",
		"usr/lib64",
		"usr/share",
		"usr/local",
		"var",
		"var/log",
		"var/tmp",
		"var/lib",
	),
	mergedUsr,

	group{Check: Executable, Category: Binaries, Prefix: "usr/bin/"}.of(
		"bash",
		"sh",
		"ls",
		"cat",
		"cp",
		"mv",
		"rm",
		"mkdir",
		"ln",
		"chmod",
		"chown",
		"grep",
		"sed",
		"tar",
		"gzip",
		"xz",
		"mount",
		"umount",
		"systemctl",
		"journalctl",
		"su",
		"sudo",
		"passwd",
		"openssl",
	),
	group{Check: Executable, Criticality: Optional, Category: Binaries, Prefix: "usr/bin/"}.of(
		"ssh",
		"nmcli",
		"less",
		"vi",
		"ip",
	),
	group{Check: Executable, Category: Binaries, Prefix: "usr/sbin/"}.of(
		"agetty",
		"login",
		"unix_chkpwd",
		"useradd",
		"usermod",
		"chpasswd",
		"fsck",
		"blkid",
		"modprobe",
	),
	group{Check: Executable, Criticality: Optional, Category: Binaries, Prefix: "usr/sbin/"}.of(
		"sshd",
		"NetworkManager",
		"wpa_supplicant",
		"mkfs.ext4",
		"mkfs.fat",
		"mkfs.btrfs",
	),
	group{Check: Executable, Category: Binaries, Prefix: "usr/lib/systemd/"}.of(
		"systemd",
		"systemd-journald",
		"systemd-udevd",
		"systemd-logind",
		"systemd-executor",
		"systemd-shutdown",
	),
	[]Requirement{
		{Path: "usr/sbin/init", Check: SymlinkResolves, Category: Symlinks, Reason: "system won't boot"},
	},

	group{Check: Exists, Category: Units, Prefix: "usr/lib/systemd/system/"}.of(
		"default.target",
		"multi-user.target",
		"graphical.target",
		"getty@.service",
		"serial-getty@.service",
		"systemd-journald.service",
		"systemd-udevd.service",
		"systemd-logind.service",
		"dbus.service",
	),
	group{Check: Exists, Criticality: Optional, Category: Units, Prefix: "usr/lib/systemd/system/"}.of(
		"NetworkManager.service",
		"sshd.service",
		"bluetooth.service",
	),

	group{Check: Exists, Category: EtcFiles}.of(
		"etc/passwd",
		"etc/shadow",
		"etc/group",
		"etc/gshadow",
		"etc/os-release",
		"etc/fstab",
		"etc/hostname",
		"etc/shells",
		"etc/login.defs",
		"etc/nsswitch.conf",
		"etc/sudoers",
	),
	group{Check: Exists, Category: EtcFiles, Reason: "authentication will fail"}.of(
		"etc/pam.d/system-auth",
		"etc/pam.d/password-auth",
		"etc/pam.d/login",
		"etc/pam.d/sshd",
		"etc/pam.d/sudo",
		"etc/pam.d/su",
		"etc/pam.d/passwd",
		"etc/pam.d/other",
	),
	group{Check: Exists, Category: EtcFiles, Reason: "security policy incomplete"}.of(
		"etc/security/limits.conf",
		"etc/security/faillock.conf",
		"etc/security/pam_env.conf",
		"etc/security/access.conf",
		"etc/security/pwquality.conf",
	),

	group{Check: Exists, Category: Libraries, Prefix: "usr/lib64/security/", Reason: "PAM authentication broken"}.of(
		"pam_unix.so",
		"pam_permit.so",
		"pam_deny.so",
		"pam_systemd.so",
		"pam_env.so",
		"pam_limits.so",
		"pam_faillock.so",
		"pam_pwquality.so",
		"pam_wheel.so",
		"pam_securetty.so",
		"pam_nologin.so",
		"pam_loginuid.so",
		"pam_namespace.so",
		"pam_keyinit.so",
		"pam_succeed_if.so",
		"pam_localuser.so",
		"pam_access.so",
		"pam_shells.so",
	),
	[]Requirement{
		{Path: "usr/lib64/security/pam_*.so", Check: GlobCountAtLeast, N: 18, Category: Libraries},
	},
	group{Check: Exists, Category: Libraries, Prefix: "usr/lib64/"}.of(
		"libc.so.6",
		"libpam.so.0",
		"libsystemd.so.0",
		"libcrypt.so.2",
	),
	[]Requirement{
		{Path: "usr/lib64/ld-linux-x86-64.so.2", Check: SymlinkResolves, Category: Libraries, Reason: "nothing dynamically linked will run"},
	},

	group{Check: Exists, Criticality: Optional, Category: Binaries, Prefix: "usr/lib/udev/"}.of(
		"ata_id",
		"scsi_id",
		"cdrom_id",
	),

	[]Requirement{
		{Path: "usr/lib/modules/*/kernel/**", Check: GlobCountAtLeast, N: 1, Category: KernelModules},
		{Path: "usr/lib/udev/rules.d/*.rules", Check: GlobCountAtLeast, N: 1, Category: UdevRules, Reason: "device detection broken"},
		{Path: "usr/share/terminfo/**", Check: GlobCountAtLeast, N: 1, Category: Other, Reason: "terminal apps broken"},
		{Path: "usr/share/zoneinfo/**", Check: GlobCountAtLeast, N: 1, Criticality: Optional, Category: Other},
		{Path: "usr/{lib,share}/locale/**", Check: GlobCountAtLeast, N: 1, Criticality: Optional, Category: Other},
		{Path: "usr/share/licenses/*/*", Check: GlobCountAtLeast, N: 1, Criticality: Optional, Category: Other},
	},

	// Leftovers from the live initramfs
	group{Check: Absent, Category: Forbidden}.of(
		"bin/busybox",
		"usr/bin/busybox",
		"live-overlay",
	),
)

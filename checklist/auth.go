package checklist

import "slices"

// The authentication subsystem of a root filesystem: PAM, sudo and login.
// Everything PAM related that other checklists require is repeated here.
var authAudit = slices.Concat(
	[]Requirement{
		{Path: "usr/sbin/unix_chkpwd", Check: Executable, Category: Binaries, Reason: "pam_unix.so hardcodes this path, password auth will fail"},
		{Path: "usr/sbin/passwd", Check: Executable, Category: Binaries, Reason: "password changes impossible"},
		{Path: "usr/sbin/chpasswd", Check: Executable, Category: Binaries, Reason: "batch password setting broken"},
		{Path: "usr/bin/sudo", Check: Executable, Category: Binaries, Reason: "privilege escalation unavailable"},
		{Path: "usr/bin/su", Check: Executable, Category: Binaries, Reason: "user switching unavailable"},
		{Path: "usr/sbin/login", Check: Executable, Category: Binaries, Reason: "console login broken"},
		{Path: "usr/sbin/agetty", Check: Executable, Category: Binaries, Reason: "getty service broken"},
	},
	group{Check: Executable, Criticality: Optional, Category: Binaries, Prefix: "usr/bin/"}.of(
		"sudoedit",
		"sudoreplay",
		"newgrp",
		"chage",
		"gpasswd",
		"faillock",
	),
	group{Check: Executable, Criticality: Optional, Category: Binaries, Prefix: "usr/sbin/"}.of(
		"useradd",
		"userdel",
		"usermod",
		"groupadd",
		"groupdel",
		"pwck",
		"grpck",
		"visudo",
		"runuser",
		"nologin",
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
		{Path: "usr/lib64/libpam.so.0", Check: Exists, Category: Libraries},
		{Path: "usr/lib64/libpam_misc.so.0", Check: Exists, Criticality: Optional, Category: Libraries},
	},

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
	group{Check: Exists, Criticality: Optional, Category: EtcFiles}.of(
		"etc/pam.d/chpasswd",
		"etc/pam.d/runuser",
		"etc/pam.d/systemd-user",
		"etc/pam.d/sudo-i",
		"etc/pam.d/su-l",
	),
	[]Requirement{
		{Path: "etc/pam.d/password-auth", Check: FileOrLinkTo, Target: "etc/pam.d/system-auth", Category: Symlinks, Reason: "password logins bypass the system-auth stack"},
	},

	group{Check: Exists, Category: EtcFiles, Reason: "security policy incomplete"}.of(
		"etc/security/limits.conf",
		"etc/security/faillock.conf",
		"etc/security/pam_env.conf",
		"etc/security/access.conf",
		"etc/security/pwquality.conf",
	),
	group{Check: Exists, Criticality: Optional, Category: EtcFiles}.of(
		"etc/security/namespace.conf",
		"etc/security/time.conf",
		"etc/security/group.conf",
	),

	[]Requirement{
		{Path: "etc/passwd", Check: Regular, Category: EtcFiles, Reason: "user database"},
		{Path: "etc/shadow", Check: Regular, Category: EtcFiles, Reason: "password hashes"},
		{Path: "etc/group", Check: Regular, Category: EtcFiles, Reason: "group database"},
		{Path: "etc/gshadow", Check: Exists, Category: EtcFiles, Reason: "group password hashes"},
		{Path: "etc/login.defs", Check: Exists, Category: EtcFiles, Reason: "login defaults"},
		{Path: "etc/sudoers", Check: Exists, Category: EtcFiles, Reason: "sudo configuration"},
		{Path: "etc/sudo.conf", Check: Exists, Category: EtcFiles, Reason: "sudo runtime configuration"},
		{Path: "etc/shells", Check: Exists, Category: EtcFiles, Reason: "valid login shells"},
		{Path: "etc/nsswitch.conf", Check: Exists, Category: EtcFiles, Reason: "passwd and group resolution"},
		{Path: "etc/securetty", Check: Exists, Criticality: Optional, Category: EtcFiles, Reason: "root login not restricted to secure terminals"},
	},

	group{Check: Exists, Criticality: Optional, Category: Libraries, Prefix: "usr/libexec/sudo/"}.of(
		"sudoers.so",
		"libsudo_util.so.0",
	),

	[]Requirement{
		{Path: "usr/sbin/init", Check: SymlinkResolves, Category: Symlinks, Reason: "system won't boot"},
		{Path: "usr/lib/systemd/systemd-logind", Check: Executable, Category: Binaries, Reason: "no seat or session tracking"},
		{Path: "usr/lib/systemd/system/systemd-logind.service", Check: Exists, Criticality: Optional, Category: Units},
	},
)

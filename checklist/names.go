package checklist

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.pdmccormick.com/fsdbg/archive"
)

// Name identifies one of the built in checklists.
type Name uint8

const (
	InstallInitramfs Name = iota + 1 // systemd based initramfs of an installed system
	LiveInitramfs                    // busybox based initramfs of the live boot media
	Rootfs                           // Complete root filesystem image
	AuthAudit                        // Authentication subsystem of a root filesystem
	LiveISO                          // Boot layout of the live ISO image
)

// Every checklist, in display order.
var Names = []Name{InstallInitramfs, LiveInitramfs, Rootfs, AuthAudit, LiveISO}

var ErrUnknownName = errors.New("checklist: unknown checklist")

// The canonical command line spelling.
func (n Name) String() string {
	switch n {
	case InstallInitramfs:
		return "install-initramfs"
	case LiveInitramfs:
		return "live-initramfs"
	case Rootfs:
		return "rootfs"
	case AuthAudit:
		return "auth-audit"
	case LiveISO:
		return "iso"
	default:
		return fmt.Sprintf("Name(%d)", uint8(n))
	}
}

// The human readable title used in reports.
func (n Name) Title() string {
	switch n {
	case InstallInitramfs:
		return "Install Initramfs"
	case LiveInitramfs:
		return "Live Initramfs"
	case Rootfs:
		return "Rootfs"
	case AuthAudit:
		return "Authentication Audit"
	case LiveISO:
		return "Live ISO"
	default:
		return n.String()
	}
}

// Parse a checklist name. Matching is case insensitive and accepts the short
// aliases "install", "live", "root" and "auth", with either "-" or "_".
func ParseName(s string) (Name, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-") {
	case "install-initramfs", "install":
		return InstallInitramfs, nil
	case "live-initramfs", "live":
		return LiveInitramfs, nil
	case "rootfs", "root":
		return Rootfs, nil
	case "auth-audit", "auth":
		return AuthAudit, nil
	case "iso":
		return LiveISO, nil
	}

	var valid = make([]string, len(Names))
	for i, n := range Names {
		valid[i] = n.String()
	}
	return 0, fmt.Errorf("%w %q, valid checklists: %s", ErrUnknownName, s, strings.Join(valid, ", "))
}

// The requirements of the named checklist. The returned slice is a copy.
func Requirements(n Name) []Requirement {
	switch n {
	case InstallInitramfs:
		return slices.Clone(installInitramfs)
	case LiveInitramfs:
		return slices.Clone(liveInitramfs)
	case Rootfs:
		return slices.Clone(rootfs)
	case AuthAudit:
		return slices.Clone(authAudit)
	case LiveISO:
		return slices.Clone(liveISO)
	default:
		return nil
	}
}

// Verify idx against the named checklist.
func (n Name) Verify(idx *archive.Index) *Report {
	rep := Verify(idx, Requirements(n))
	rep.Title = n.Title()
	return rep
}

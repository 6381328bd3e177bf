package profile

// Builtins returns the stock profiles. Paths with a "~/" prefix are expanded
// against the invoking user's home when a run starts.
func Builtins() []Profile {
	return []Profile{
		mainProfile(),
		dotsProfile(),
		sshProfile(),
		smbProfile(),
		grubProfile(),
		restProfile(),
	}
}

// mainProfile captures the bulk of a user's home directory, minus caches and
// other regenerable data.
func mainProfile() Profile {
	return Profile{
		Name:    "main",
		Prefix:  "BKP",
		Subpath: "MAIN",
		Keep:    -1, // full-home runs are rotated by hand
		CommonExcludes: []string{
			".cache/",
			".var/app/",
			".subversion/",
			".mozilla/",
			".local/share/fonts/",
			".vscode-oss/",
			"Trash/",
			".config/*/Cache/",
			".config/*/cache/",
			".config/*/Code Cache/",
			".config/*/GPUCache/",
			".config/*/CachedData/",
			".config/*/CacheStorage/",
			".config/*/Service Worker/",
			".config/*/IndexedDB/",
			".config/*/Local Storage/",
			".rustup/",
		},
		Sources: []SourceSpec{
			{Path: "~/Documents"},
			{Path: "~/Downloads", Excludes: []string{"*.iso"}},
			{Path: "~/Pictures"},
			{Path: "~/Videos"},
			{Path: "~/Code"},
			{Path: "~/VM", Excludes: []string{"ISO/"}},
			{Path: "~/.config"},
			{Path: "~/.var"},
			{Path: "~/.ssh", Excludes: []string{"agent/"}},
			{Path: "~/.icons", Optional: true},
			{Path: "~/.themes", Optional: true},
			{Path: "~/.local"},
			{Path: "~/.oh-my-zsh", Optional: true},
		},
	}
}

// dotsProfile captures the dotfiles tree managed separately from the full
// home backup.
func dotsProfile() Profile {
	return Profile{
		Name:    "dots",
		Prefix:  "DOTS",
		Subpath: "DOTS",
		Keep:    5,
		Sources: []SourceSpec{
			{Path: "~/.mydotfiles"},
			{Path: "~/.config/hypr", Optional: true},
		},
	}
}

func sshProfile() Profile {
	return Profile{
		Name:          "ssh",
		Prefix:        "SSH",
		Subpath:       "SERV/SSH",
		Keep:          5,
		RestoreMirror: true,
		Sources: []SourceSpec{
			{Path: "~/.ssh", Excludes: []string{"agent", "agent/"}},
			{Path: "/etc/ssh/sshd_config", Elevated: true},
		},
		PostRestore: []Hook{
			{
				Name:     "sshd-config-check",
				Kind:     HookValidate,
				Argv:     []string{"sshd", "-t", "-f", "/etc/ssh/sshd_config"},
				Elevated: true,
			},
			{
				Name: "ssh-dir-perms",
				Kind: HookFix,
				Argv: []string{"chmod", "700", "~/.ssh"},
			},
			{
				Name:     "sshd-enable",
				Kind:     HookRestart,
				Argv:     []string{"systemctl", "enable", "sshd.service"},
				Elevated: true,
			},
			{
				Name:     "sshd-restart",
				Kind:     HookRestart,
				Argv:     []string{"systemctl", "restart", "sshd.service"},
				Elevated: true,
			},
		},
	}
}

func smbProfile() Profile {
	return Profile{
		Name:    "smb",
		Prefix:  "SMB",
		Subpath: "SERV/SMB",
		Keep:    5,
		Sources: []SourceSpec{
			{Path: "/etc/samba/smb.conf", Elevated: true},
			{Path: "/etc/fstab", Elevated: true},
			{Path: "/etc/samba/creds-*", Elevated: true, Optional: true},
		},
		PostRestore: []Hook{
			{
				Name:     "smb-config-check",
				Kind:     HookValidate,
				Argv:     []string{"testparm", "-s"},
				Elevated: true,
			},
			{
				Name:     "smb-restart",
				Kind:     HookRestart,
				Argv:     []string{"systemctl", "restart", "smb.service"},
				Elevated: true,
			},
			{
				Name:     "nmb-restart",
				Kind:     HookRestart,
				Argv:     []string{"systemctl", "restart", "nmb.service"},
				Elevated: true,
			},
		},
	}
}

func grubProfile() Profile {
	return Profile{
		Name:    "grub",
		Prefix:  "GRUB",
		Subpath: "SERV/GRUB",
		Keep:    5,
		Sources: []SourceSpec{
			{Path: "/boot/grub/themes/lateralus", Elevated: true, Optional: true},
			{Path: "/etc/default/grub", Elevated: true},
		},
		PostRestore: []Hook{
			{
				Name:     "grub-mkconfig",
				Kind:     HookRestart,
				Argv:     []string{"grub-mkconfig", "-o", "/boot/grub/grub.cfg"},
				Elevated: true,
			},
		},
	}
}

// restProfile captures the system files needed to rebuild boot plumbing.
func restProfile() Profile {
	return Profile{
		Name:    "rest",
		Prefix:  "REST",
		Subpath: "SERV/REST",
		Keep:    5,
		Sources: []SourceSpec{
			{Path: "/etc/mkinitcpio.conf", Elevated: true},
			{Path: "/usr/share/plymouth/plymouthd.defaults", Elevated: true, Optional: true},
			{Path: "/usr/lib/sddm/sddm.conf.d/default.conf", Elevated: true, Optional: true},
		},
	}
}

//go:build windows

package config

// mapEnvKey lets unix-style placeholders resolve on Windows.
func mapEnvKey(key string) string {
	switch key {
	case "HOSTNAME":
		return "COMPUTERNAME"
	case "HOME":
		return "USERPROFILE"
	}
	return key
}

// Package platform implements one pulse.Adapter per supported platform.
package platform

import (
	"strings"

	"pulse-go/internal/config"
	"pulse-go/internal/pulse"
)

// NewAdapters builds the dispatch table for every supported platform, applying
// the per-platform settings from cfg.
func NewAdapters(cfg *config.Config) pulse.Adapters {
	return pulse.NewAdapters(
		NewShortVideo(cfg.Platform(string(pulse.PlatformShortVideo))),
		NewImageVideoA(cfg.Platform(string(pulse.PlatformImageVideoA))),
		NewImageVideoB(cfg.Platform(string(pulse.PlatformImageVideoB))),
		NewVideoChannel(cfg.Platform(string(pulse.PlatformVideoChannel))),
	)
}

// checkAccount validates what every adapter requires before touching the network.
func checkAccount(p pulse.Platform, account *pulse.Account, credential string) error {
	if account == nil {
		return pulse.ValidationError("account is required")
	}
	if account.Platform != p {
		return pulse.NotFoundError(p, "account %s is registered on %q", account.ID, string(account.Platform))
	}
	if strings.TrimSpace(credential) == "" {
		return pulse.ConfigurationError(p, "account %s has no access credential", account.ID)
	}
	return nil
}

// checkExternalID is checkAccount for adapters that address the account by its
// platform-side id.
func checkExternalID(p pulse.Platform, account *pulse.Account, credential string) error {
	if err := checkAccount(p, account, credential); err != nil {
		return err
	}
	if account.ExternalAccountID == "" {
		return pulse.ConfigurationError(p, "account %s has no external account id", account.ID)
	}
	return nil
}

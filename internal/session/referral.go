package session

import (
	"context"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/polinfinity/staking-sync/pkg"
)

// DefaultReferrer is used when neither the link nor the cache provide a valid
// referrer. The contract treats it as "no referrer" and credits the admin.
var DefaultReferrer = common.Address{}

// ReferralCache persists the single referrer across sessions.
type ReferralCache interface {
	LoadReferrer(ctx context.Context) (string, error)
	SaveReferrer(ctx context.Context, referrer string) error
}

// ResolveReferrer picks the session referrer from rawRef, then the cache,
// then DefaultReferrer. A valid rawRef is persisted in checksummed form.
// The first resolution is final; later calls return the same address.
func (s *Session[H]) ResolveReferrer(ctx context.Context, rawRef string, cache ReferralCache) common.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.referrer != nil {
		return *s.referrer
	}

	referrer := resolveReferrer(ctx, rawRef, cache)
	s.referrer = &referrer
	return referrer
}

// Referrer returns the resolved referrer, or DefaultReferrer before resolution.
func (s *Session[H]) Referrer() common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.referrer == nil {
		return DefaultReferrer
	}
	return *s.referrer
}

func resolveReferrer(ctx context.Context, rawRef string, cache ReferralCache) common.Address {
	log := log.Ctx(ctx)

	if rawRef != "" {
		addr, err := pkg.ParseEVMAddress(rawRef)
		if err == nil {
			if cache != nil {
				if err := cache.SaveReferrer(ctx, addr.Hex()); err != nil {
					log.Warn().Err(err).Msg("failed to persist referrer")
				}
			}
			return addr
		}
		log.Warn().Err(err).Str("ref", rawRef).Msg("ignoring malformed referral parameter")
	}

	if cache != nil {
		cached, err := cache.LoadReferrer(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("failed to load cached referrer")
		case cached != "":
			addr, err := pkg.ParseEVMAddress(cached)
			if err == nil {
				return addr
			}
			log.Warn().Err(err).Msg("ignoring malformed cached referrer")
		}
	}

	return DefaultReferrer
}

// ParseReferralParam extracts the ref query parameter from a referral link.
// A value that is not a URL with a ref parameter is returned trimmed, so a
// bare address can be passed as well.
func ParseReferralParam(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	u, err := url.Parse(link)
	if err == nil {
		if ref := u.Query().Get("ref"); ref != "" {
			return ref
		}
		if u.RawQuery != "" || u.Scheme != "" {
			return ""
		}
	}
	return link
}

// ReferralLink renders <baseURL>?ref=<address>, keeping any other query parameters.
func ReferralLink(baseURL string, address common.Address) string {
	u, err := url.Parse(baseURL)
	if err != nil || baseURL == "" {
		return "?ref=" + address.Hex()
	}
	q := u.Query()
	q.Set("ref", address.Hex())
	u.RawQuery = q.Encode()
	return u.String()
}

package model

const ReferralCacheCollection = "referral_cache"

// ReferralCache is the only persisted state: the referrer of the last valid
// referral link, in checksummed form.
type ReferralCache struct {
	Referrer  string `bson:"referrer"`
	UpdatedAt int64  `bson:"updated_at"`
}

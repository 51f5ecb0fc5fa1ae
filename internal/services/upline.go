package services

import (
	"errors"

	"reward-service/internal/models"
)

// Network bonus amounts per ancestor role.
const (
	MasterMDNetworkBonus = 15.0
	MDNetworkBonus       = 10.0
	MIMSNetworkBonus     = 20.0
)

// DefaultMaxUplineHops bounds the walk. Referral links cannot form cycles
// (referred_by only ever points at a pre-existing member), the bound exists
// so corrupt data cannot spin the walker forever.
const DefaultMaxUplineHops = 50

// ErrUplineBoundReached is returned together with the awards gathered so far
// when the walk hits the hop bound. Callers should treat it as a data anomaly.
var ErrUplineBoundReached = errors.New("upline walk exceeded maximum hop count")

// MemberResolver looks up a member by username against a consistent snapshot.
// It returns (nil, nil) when no such member exists.
type MemberResolver func(username string) (*models.Member, error)

// UplineAward is one bonus the walker decided an ancestor should receive.
type UplineAward struct {
	Member *models.Member
	Amount float64
	Kind   string
}

// WalkUpline computes the network bonuses owed along the referral chain above
// a direct inviter. It starts at inviter.ReferredBy and climbs:
//
//   - a missing ancestor or a CEO ends the walk (the CEO earns nothing),
//   - a MASTERMD earns a network bonus and the walk continues,
//   - only the first MD in the chain earns the MD network bonus; further MDs
//     earn nothing but the walk still continues past them,
//   - every MI or MS ancestor earns a network bonus (uncapped),
//   - any other role is skipped.
//
// The function is pure: it only reads through resolve and never writes.
func WalkUpline(inviter *models.Member, resolve MemberResolver, maxHops int) ([]UplineAward, error) {
	if maxHops <= 0 {
		maxHops = DefaultMaxUplineHops
	}

	var awards []UplineAward
	mdPaid := false

	next := inviter.ReferredBy
	for hops := 0; next != ""; hops++ {
		if hops >= maxHops {
			return awards, ErrUplineBoundReached
		}

		ancestor, err := resolve(next)
		if err != nil {
			return awards, err
		}
		if ancestor == nil {
			break
		}

		switch ancestor.Role {
		case models.RoleCEO:
			return awards, nil
		case models.RoleMasterMD:
			awards = append(awards, UplineAward{Member: ancestor, Amount: MasterMDNetworkBonus, Kind: models.KindNetworkBonus})
		case models.RoleMD:
			if !mdPaid {
				awards = append(awards, UplineAward{Member: ancestor, Amount: MDNetworkBonus, Kind: models.KindMDNetworkBonus})
				mdPaid = true
			}
		case models.RoleMI, models.RoleMS:
			awards = append(awards, UplineAward{Member: ancestor, Amount: MIMSNetworkBonus, Kind: models.KindNetworkBonus})
		}

		next = ancestor.ReferredBy
	}

	return awards, nil
}

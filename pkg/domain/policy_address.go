package domain

// NewAddressPolicy returns the address-book invariant policy: at most one
// entry carries IsDefault. A written entry claiming the default demotes all
// others, and removing the default promotes the first remaining entry.
func NewAddressPolicy() Policy[Address] {
	return addressPolicy{}
}

type addressPolicy struct{}

func (addressPolicy) Name() string { return "address_single_default" }

// Merge replaces the stored address with the incoming one; saving an address
// under an existing id is an overwrite, not an accumulation.
func (addressPolicy) Merge(_, incoming Address) (Address, bool) {
	return incoming, true
}

// Normalize enforces the single-default invariant at write time. The entry
// touched by the current command wins the default when it claims it;
// otherwise the first flagged entry is kept and the rest are demoted.
func (addressPolicy) Normalize(addrs []Address, changes []Change) []Address {
	claimant := ""
	removed := false
	for _, ch := range changes {
		switch ch.Action {
		case ActionAdd, ActionUpdate:
			for _, a := range addrs {
				if a.ID == ch.ID && a.IsDefault {
					claimant = ch.ID
				}
			}
		case ActionRemove:
			removed = true
		}
	}

	kept := false
	for i := range addrs {
		if !addrs[i].IsDefault {
			continue
		}
		win := addrs[i].ID == claimant
		if claimant == "" {
			win = !kept
		}
		addrs[i].IsDefault = win
		if win {
			kept = true
		}
	}

	// Deleting the default leaves the head of the book as the new default.
	if removed && !kept && len(addrs) > 0 {
		addrs[0].IsDefault = true
	}
	return addrs
}

package domain

// NewFavoritesPolicy returns the favorites invariant policy: set semantics by
// product id. Re-adding an existing favorite is a no-op and hydrated payloads
// are deduplicated keeping the first occurrence.
func NewFavoritesPolicy() Policy[FavoriteEntry] {
	return favoritesPolicy{}
}

type favoritesPolicy struct{}

func (favoritesPolicy) Name() string { return "favorites_dedupe" }

// Merge keeps the existing entry untouched; the idempotent-add contract.
func (favoritesPolicy) Merge(existing, _ FavoriteEntry) (FavoriteEntry, bool) {
	return existing, false
}

// Normalize drops duplicate ids, preserving insertion order of the first
// occurrence. Duplicates only arise from persisted data written by clients
// that predate the set-semantics contract.
func (favoritesPolicy) Normalize(entries []FavoriteEntry, _ []Change) []FavoriteEntry {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

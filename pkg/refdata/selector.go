package refdata

import "errors"

// Selector guard errors. A rejected transition leaves the selection state
// unchanged.
var (
	// ErrProvinceNotSelected is returned when a district is selected before
	// a province.
	ErrProvinceNotSelected = errors.New("refdata: no province selected")
	// ErrDistrictNotSelected is returned when a commune is selected before
	// a district.
	ErrDistrictNotSelected = errors.New("refdata: no district selected")
	// ErrNotFound is returned for a code missing at the targeted level.
	ErrNotFound = errors.New("refdata: code not found")
)

// Selector is the cascading three-level selection state machine. Selecting a
// higher level always invalidates the levels below it. The selector is not
// safe for concurrent use; it belongs to a single form.
type Selector struct {
	tree     *Tree
	province *Province
	district *District
	commune  *Ward
}

// NewSelector builds a selector over a loaded reference tree.
func NewSelector(tree *Tree) *Selector {
	return &Selector{tree: tree}
}

// SelectProvince selects the province with the given code and resets the
// district and commune selections.
func (s *Selector) SelectProvince(code string) error {
	for i := range s.tree.Provinces {
		if s.tree.Provinces[i].Code != code {
			continue
		}
		s.province = &s.tree.Provinces[i]
		s.district = nil
		s.commune = nil
		return nil
	}
	return ErrNotFound
}

// SelectDistrict selects a district within the current province and resets
// the commune selection. It fails when no province is selected.
func (s *Selector) SelectDistrict(code string) error {
	if s.province == nil {
		return ErrProvinceNotSelected
	}
	for i := range s.province.Districts {
		if s.province.Districts[i].Code != code {
			continue
		}
		s.district = &s.province.Districts[i]
		s.commune = nil
		return nil
	}
	return ErrNotFound
}

// SelectCommune selects a commune (ward) within the current district. It
// fails when no district is selected.
func (s *Selector) SelectCommune(code string) error {
	if s.district == nil {
		return ErrDistrictNotSelected
	}
	for i := range s.district.Wards {
		if s.district.Wards[i].Code != code {
			continue
		}
		s.commune = &s.district.Wards[i]
		return nil
	}
	return ErrNotFound
}

// Reset clears all three selections.
func (s *Selector) Reset() {
	s.province = nil
	s.district = nil
	s.commune = nil
}

// Province returns the current province selection.
func (s *Selector) Province() (Province, bool) {
	if s.province == nil {
		return Province{}, false
	}
	return *s.province, true
}

// District returns the current district selection.
func (s *Selector) District() (District, bool) {
	if s.district == nil {
		return District{}, false
	}
	return *s.district, true
}

// Commune returns the current commune selection.
func (s *Selector) Commune() (Ward, bool) {
	if s.commune == nil {
		return Ward{}, false
	}
	return *s.commune, true
}

// Complete reports whether all three levels are selected; the terminal state
// required before checkout accepts the shipping form.
func (s *Selector) Complete() bool {
	return s.province != nil && s.district != nil && s.commune != nil
}

// Provinces lists province candidates narrowed by the text filter. Filtering
// never touches the selection state.
func (s *Selector) Provinces(filter string) []Province {
	out := make([]Province, 0, len(s.tree.Provinces))
	for _, p := range s.tree.Provinces {
		if matchName(p.Name, filter) {
			out = append(out, p)
		}
	}
	return out
}

// Districts lists district candidates for the selected province, narrowed by
// the text filter. Without a province selection the list is empty.
func (s *Selector) Districts(filter string) []District {
	if s.province == nil {
		return nil
	}
	out := make([]District, 0, len(s.province.Districts))
	for _, d := range s.province.Districts {
		if matchName(d.Name, filter) {
			out = append(out, d)
		}
	}
	return out
}

// Communes lists commune candidates for the selected district, narrowed by
// the text filter. Without a district selection the list is empty.
func (s *Selector) Communes(filter string) []Ward {
	if s.district == nil {
		return nil
	}
	out := make([]Ward, 0, len(s.district.Wards))
	for _, w := range s.district.Wards {
		if matchName(w.Name, filter) {
			out = append(out, w)
		}
	}
	return out
}

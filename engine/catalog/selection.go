package catalog

import "sync"

type selectionImpl struct {
	mu      *sync.Mutex
	catalog Catalog
	model   string
	area    string
}

// Selection is the user's current main model and area.
type Selection interface {
	// Model returns the selected main model.
	Model() string

	// Area returns the selected area, or "" when none is selected.
	Area() string

	// SetModel selects a main model. Switching to a model that has areas clears the
	// selected area.
	//
	// Parameters:
	//   - model: the main model name
	SetModel(model string)

	// SetArea selects an area; "" clears it.
	//
	// Parameters:
	//   - area: the area name
	SetArea(area string)

	// ToggleArea selects area, or clears it when it is already selected.
	//
	// Parameters:
	//   - area: the area name
	//
	// Returns:
	//   - string: the area selected afterwards
	ToggleArea(area string) string

	// Resolve resolves the current selection against the catalog.
	//
	// Returns:
	//   - Entry: the asset and camera to use
	Resolve() Entry
}

var _ Selection = &selectionImpl{}

// NewSelection starts a selection on the catalog's default model with no area.
//
// Parameters:
//   - c: the catalog to resolve against
//
// Returns:
//   - Selection: the selection
func NewSelection(c Catalog) Selection {
	return &selectionImpl{
		mu:      &sync.Mutex{},
		catalog: c,
		model:   c.Config().Defaults.Model,
	}
}

func (s *selectionImpl) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *selectionImpl) Area() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.area
}

func (s *selectionImpl) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	if len(s.catalog.Areas(model)) > 0 {
		s.area = ""
	}
}

func (s *selectionImpl) SetArea(area string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.area = area
}

func (s *selectionImpl) ToggleArea(area string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.area == area {
		s.area = ""
	} else {
		s.area = area
	}
	return s.area
}

func (s *selectionImpl) Resolve() Entry {
	s.mu.Lock()
	model, area := s.model, s.area
	s.mu.Unlock()
	return s.catalog.Resolve(model, area)
}

package reader

import "fmt"

// State of a viewing session.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateError
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	minZoom     = 0.25
	maxZoom     = 4.0
	zoomStep    = 0.25
	defaultZoom = 1.0
)

// Session is a page-oriented viewing session over one PDF document.
//
// It starts in Loading, moves to Loaded once the document decodes (or Error
// if it does not), and ends in Closed. Page navigation clamps at
// [1, totalPages]; zoom and rotation are view-only transforms that never
// touch the page state. Nothing here is persisted: progress lives only for
// the lifetime of the session unless the caller saves it in a Tracker.
type Session struct {
	state       State
	currentPage int
	totalPages  int
	zoom        float64
	rotation    int
	loadErr     error

	// countPages is swappable so tests do not need real PDF fixtures.
	countPages func([]byte) (int, error)
}

func NewSession() *Session {
	return &Session{
		state:      StateLoading,
		zoom:       defaultZoom,
		countPages: PageCount,
	}
}

// Load decodes the document and transitions to Loaded with the first page
// current. A decode failure transitions to Error; there is no retry.
func (s *Session) Load(data []byte) error {
	if s.state != StateLoading {
		return fmt.Errorf("load in state %s", s.state)
	}
	count, err := s.countPages(data)
	if err != nil {
		s.state = StateError
		s.loadErr = fmt.Errorf("failed to load PDF: %w", err)
		return s.loadErr
	}
	s.state = StateLoaded
	s.totalPages = count
	s.currentPage = 1
	return nil
}

// Resume positions the session at a previously known page, clamped to the
// valid range. Only meaningful after a successful Load.
func (s *Session) Resume(page int) {
	if s.state != StateLoaded {
		return
	}
	s.currentPage = clampPage(page, s.totalPages)
}

// NextPage advances one page. At the last page it is a no-op and reports false.
func (s *Session) NextPage() bool {
	if s.state != StateLoaded || s.currentPage >= s.totalPages {
		return false
	}
	s.currentPage++
	return true
}

// PrevPage retreats one page. At the first page it is a no-op and reports false.
func (s *Session) PrevPage() bool {
	if s.state != StateLoaded || s.currentPage <= 1 {
		return false
	}
	s.currentPage--
	return true
}

// GoToPage jumps to an absolute page, clamped to [1, totalPages].
func (s *Session) GoToPage(page int) {
	if s.state != StateLoaded {
		return
	}
	s.currentPage = clampPage(page, s.totalPages)
}

func (s *Session) ZoomIn() {
	if s.zoom+zoomStep <= maxZoom {
		s.zoom += zoomStep
	}
}

func (s *Session) ZoomOut() {
	if s.zoom-zoomStep >= minZoom {
		s.zoom -= zoomStep
	}
}

// Rotate turns the view a quarter turn clockwise.
func (s *Session) Rotate() {
	s.rotation = (s.rotation + 90) % 360
}

// Close terminates the session. Further navigation is a no-op.
func (s *Session) Close() {
	s.state = StateClosed
}

func (s *Session) State() State     { return s.state }
func (s *Session) CurrentPage() int { return s.currentPage }
func (s *Session) TotalPages() int  { return s.totalPages }
func (s *Session) Zoom() float64    { return s.zoom }
func (s *Session) Rotation() int    { return s.rotation }
func (s *Session) Err() error       { return s.loadErr }

func clampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

package navigation

// State is the navigation lifecycle of one console view.
type State uint8

const (
	// StateIdle means nothing has been requested yet.
	StateIdle State = iota
	// StateSuspended means a navigation waits for the session to resolve.
	StateSuspended
	// StateEvaluating is the transient state while the evaluator runs.
	StateEvaluating
	// StateRendering means the last decision allowed the page.
	StateRendering
	// StateRedirecting means the last decision replaced the location.
	StateRedirecting
	// StateNotFound means the last path matched nothing.
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StateSuspended:
		return "suspended"
	case StateEvaluating:
		return "evaluating"
	case StateRendering:
		return "rendering"
	case StateRedirecting:
		return "redirecting"
	case StateNotFound:
		return "not_found"
	default:
		return "idle"
	}
}

// Outcome is the observable result of the machine after an event.
type Outcome struct {
	State      State
	Decision   Decision
	Generation uint64
}

// Machine sequences navigation events against session changes. It starts with
// a loading session, so no navigation is evaluated before the provider
// resolves. A Machine is not safe for concurrent use.
type Machine struct {
	evaluator *Evaluator
	session   Session
	path      string
	state     State
	decision  Decision
	gen       uint64
}

// NewMachine builds a Machine in the Idle state.
func NewMachine(e *Evaluator) *Machine {
	return &Machine{evaluator: e, session: Session{Loading: true}}
}

// Navigate requests p. While the session is loading the request is held and
// nothing is rendered.
func (m *Machine) Navigate(p string) Outcome {
	m.path = CleanPath(p)
	m.gen++
	if m.session.Loading {
		m.suspend()
		return m.Outcome()
	}
	return m.evaluate()
}

// SetSession records a provider update. Any held or finished navigation is
// evaluated again against the new session; the previous decision is dropped.
func (m *Machine) SetSession(s Session) Outcome {
	if s == m.session {
		return m.Outcome()
	}
	m.session = s
	if m.path == "" {
		return m.Outcome()
	}
	m.gen++
	if s.Loading {
		m.suspend()
		return m.Outcome()
	}
	return m.evaluate()
}

// Session returns the last session seen.
func (m *Machine) Session() Session {
	return m.session
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Outcome returns the current state and decision.
func (m *Machine) Outcome() Outcome {
	return Outcome{State: m.state, Decision: m.decision, Generation: m.gen}
}

func (m *Machine) suspend() {
	m.state = StateSuspended
	m.decision = Decision{Kind: KindPending, Path: m.path}
}

func (m *Machine) evaluate() Outcome {
	m.state = StateEvaluating
	d := m.evaluator.Evaluate(m.session, m.path)
	m.decision = d
	switch d.Kind {
	case KindAllow:
		m.state = StateRendering
	case KindRedirect:
		m.state = StateRedirecting
	case KindNotFound:
		m.state = StateNotFound
	default:
		m.state = StateSuspended
	}
	return m.Outcome()
}

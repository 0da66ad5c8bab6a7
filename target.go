package sitecrawl

// Target is a URL admitted to the crawl together with the link depth at
// which it was discovered. Seeds have depth 0.
type Target struct {
	URL   string
	Depth int
}

// Candidate is a link that passed classification and may be admitted.
type Candidate struct {
	URL    string
	Source string // page the link was found on; empty for seeds
}

// Reason explains why a link was rejected during classification.
// The zero value means the link was accepted.
type Reason int

// Rejection reasons.
const (
	ReasonNone Reason = iota
	ReasonMalformed
	ReasonNotAbsolute
	ReasonScheme
	ReasonDomain
	ReasonExtension
	ReasonPattern
)

// String returns a short label for the reason, suitable for logging.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "accepted"
	case ReasonMalformed:
		return "malformed"
	case ReasonNotAbsolute:
		return "not-absolute"
	case ReasonScheme:
		return "scheme"
	case ReasonDomain:
		return "domain"
	case ReasonExtension:
		return "extension"
	case ReasonPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// State is the lifecycle of a single crawl run.
//
//	Running -> Exhausted -> Terminated
//	Running -> Drained   -> Terminated
//
// Terminated is absorbing.
type State int

// Crawl states.
const (
	StateRunning State = iota
	StateExhausted
	StateDrained
	StateTerminated
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExhausted:
		return "exhausted"
	case StateDrained:
		return "drained"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// DefaultMaxPages is the page budget used when none is configured.
const DefaultMaxPages = 400

// DefaultExcludedExtensions returns the resource extensions that are never
// followed: common image formats.
func DefaultExcludedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp"}
}

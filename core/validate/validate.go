package validate

import "net/url"

// Rule describes one recognized video host and the shape of its video
// references
type Rule struct {
	Hosts      []string `yaml:"hosts"`
	Path       string   `yaml:"path,omitempty"`
	QueryParam string   `yaml:"query_param,omitempty"`
	PathRef    bool     `yaml:"path_ref,omitempty"`
}

// DefaultRules matches the two recognized YouTube URL shapes:
// youtube.com/watch?v=... and youtu.be/<id>
func DefaultRules() []Rule {
	return []Rule{
		{Hosts: []string{"www.youtube.com", "youtube.com"}, Path: "/watch", QueryParam: "v"},
		{Hosts: []string{"youtu.be"}, PathRef: true},
	}
}

// Validator checks submitted URLs against a whitelist of host rules
type Validator struct {
	rules []Rule
}

// NewValidator creates a validator; an empty rule set falls back to the
// defaults
func NewValidator(rules []Rule) *Validator {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Validator{rules: rules}
}

// Valid reports whether raw is a well-formed URL on a whitelisted host
// matching that host's video-reference shape
func (v *Validator) Valid(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	for _, rule := range v.rules {
		if rule.matches(u) {
			return true
		}
	}
	return false
}

func (r Rule) matches(u *url.URL) bool {
	hostOK := false
	for _, host := range r.Hosts {
		if u.Hostname() == host {
			hostOK = true
			break
		}
	}
	if !hostOK {
		return false
	}

	if r.Path != "" && u.Path != r.Path {
		return false
	}
	if r.QueryParam != "" && !u.Query().Has(r.QueryParam) {
		return false
	}
	if r.PathRef && len(u.Path) <= 1 {
		return false
	}
	return true
}

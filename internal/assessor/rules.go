package assessor

import (
	"github.com/raysh454/phishguard/internal/features"
	"github.com/raysh454/phishguard/internal/typosquat"
)

const (
	RuleNoHTTPS        = "url:no-https"
	RuleSubdomains     = "url:subdomains"
	RuleHostnameDash   = "url:hostname-dash"
	RuleSensitiveWords = "url:sensitive-words"
	RuleLongHostname   = "url:long-hostname"
	RuleTyposquatting  = "domain:typosquatting"
)

const (
	maxSubdomainLevel = 2
	maxHostnameLength = 25
	lexicalWeight     = 1
)

// featureRule triggers when pred holds for the named feature.
func featureRule(id, name string, pred func(v float64) bool, explanation string) Rule {
	return Rule{
		ID:       id,
		Severity: "low",
		Eval: func(in Input) (Finding, bool) {
			if in.Features == nil || !pred(in.Features.Value(name)) {
				return Finding{}, false
			}
			return Finding{Weight: lexicalWeight, Explanation: explanation}, true
		},
	}
}

// TyposquatRule wraps a detector. A disabled detector never triggers.
func TyposquatRule(d *typosquat.Detector) Rule {
	return Rule{
		ID:       RuleTyposquatting,
		Severity: "high",
		Eval: func(in Input) (Finding, bool) {
			m, ok := d.Check(in.Hostname)
			if !ok {
				return Finding{}, false
			}
			return Finding{Weight: typosquat.Weight, Explanation: m.Explanation()}, true
		},
	}
}

// DefaultRules returns the lexical rules followed by the typosquatting rule.
func DefaultRules(d *typosquat.Detector) []Rule {
	return []Rule{
		featureRule(RuleNoHTTPS, features.NoHttps,
			func(v float64) bool { return v == 1 },
			"URL does not use HTTPS."),
		featureRule(RuleSubdomains, features.SubdomainLevel,
			func(v float64) bool { return v > maxSubdomainLevel },
			"URL has a high number of subdomains."),
		featureRule(RuleHostnameDash, features.NumDashInHostname,
			func(v float64) bool { return v > 0 },
			"URL contains dashes in the hostname."),
		featureRule(RuleSensitiveWords, features.NumSensitiveWords,
			func(v float64) bool { return v > 0 },
			"URL contains sensitive keywords (e.g., 'login', 'secure')."),
		featureRule(RuleLongHostname, features.HostnameLength,
			func(v float64) bool { return v > maxHostnameLength },
			"URL has an unusually long hostname."),
		TyposquatRule(d),
	}
}

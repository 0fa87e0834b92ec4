package roles

import (
	"strings"

	"github.com/replicatedhq/pulsar-diag/pkg/transport"
)

type Role string

const (
	Broker    Role = "broker"
	Proxy     Role = "proxy"
	Bookie    Role = "bookie"
	Zookeeper Role = "zookeeper"
	Bastion   Role = "bastion"
)

// All lists every role in log collection order.
var All = []Role{Broker, Proxy, Bookie, Zookeeper, Bastion}

// Buckets maps each role to the names of its running units, in enumeration order.
type Buckets map[Role][]string

func NewBuckets() Buckets {
	b := Buckets{}
	for _, role := range All {
		b[role] = []string{}
	}
	return b
}

type Rule struct {
	Role  Role
	Match func(name string) bool
}

// KeywordRule matches names containing any of the keywords, ignoring case.
func KeywordRule(role Role, keywords ...string) Rule {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		lowered = append(lowered, strings.ToLower(k))
	}
	return Rule{
		Role: role,
		Match: func(name string) bool {
			name = strings.ToLower(name)
			for _, k := range lowered {
				if strings.Contains(name, k) {
					return true
				}
			}
			return false
		},
	}
}

type Rules []Rule

var DefaultRules = Rules{
	KeywordRule(Broker, "broker"),
	KeywordRule(Proxy, "proxy"),
	KeywordRule(Bookie, "bookkeeper", "bookie"),
	KeywordRule(Zookeeper, "zookeeper", "zk"),
	KeywordRule(Bastion, "bastion"),
}

// StandaloneRules puts the synthetic standalone unit in the broker bucket.
var StandaloneRules = Rules{
	{
		Role: Broker,
		Match: func(name string) bool {
			return name == transport.StandaloneUnitName
		},
	},
}

// Classify places every running unit into the bucket of each rule it matches.
// A unit matching several rules appears in several buckets.
func (r Rules) Classify(units []transport.Unit) Buckets {
	buckets := NewBuckets()
	for _, unit := range units {
		if !unit.IsRunning() {
			continue
		}
		for _, rule := range r {
			if rule.Match(unit.Name) {
				buckets[rule.Role] = append(buckets[rule.Role], unit.Name)
			}
		}
	}
	return buckets
}

func Classify(units []transport.Unit) Buckets {
	return DefaultRules.Classify(units)
}

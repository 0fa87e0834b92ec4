package roles

// Resolve picks the administrative target: the first unit of the first non-empty
// list, tried in the order bastion, proxy, broker, zookeeper.
func Resolve(bastion, proxy, broker, zookeeper []string) (string, bool) {
	for _, candidates := range [][]string{bastion, proxy, broker, zookeeper} {
		if len(candidates) > 0 {
			return candidates[0], true
		}
	}
	return "", false
}

func ResolveBuckets(b Buckets) (string, bool) {
	return Resolve(b[Bastion], b[Proxy], b[Broker], b[Zookeeper])
}

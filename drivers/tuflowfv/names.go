package tuflowfv

import "strings"

var statisticPrefixes = []struct{ prefix, suffix string }{
	{"maximum value of ", "/Maximums"},
	{"minimum value of ", "/Minimums"},
	{"time at maximum value of ", "/Time at Maximums"},
	{"time at minimum value of ", "/Time at Minimums"},
}

/*
ParseVariableName maps a variable's long_name onto its dataset group name. Statistic prefixes become a
suffix, then an "x_" or "y_" prefix marks one component of a vector group. Without a long_name the variable
name is used as is.
*/
func ParseVariableName(longName, varName string) (name string, isVector, isX bool) {
	isX = true
	if longName == "" {
		return varName, false, isX
	}
	for _, sp := range statisticPrefixes {
		if strings.HasPrefix(longName, sp.prefix) {
			longName = strings.TrimPrefix(longName, sp.prefix) + sp.suffix
		}
	}
	switch {
	case strings.HasPrefix(longName, "x_"):
		return strings.TrimPrefix(longName, "x_"), true, true
	case strings.HasPrefix(longName, "y_"):
		return strings.TrimPrefix(longName, "y_"), true, false
	}
	return longName, false, isX
}

package actions

import (
	"sort"
	"strings"

	"github.com/relloyd/geniepipe/constants"
)

// IsSupportedConnectionType returns true if the connection type is found as a source or target in ActionFuncs.
// Type s3 is supported for page archives.
func IsSupportedConnectionType(schema string) bool {
	if schema == constants.ConnectionTypeS3 {
		return true
	}
	_, ok := getSupportedConnectionTypesMap("", "")[schema]
	return ok
}

func GetSupportedOdbcConnectionTypes() string {
	return getSupportedConnectionTypes("", constants.ConnectionTypeOdbc)
}

// GetSupportedTargetTypes returns the target types supported by command.
func GetSupportedTargetTypes(command string) string {
	return getSupportedConnectionTypes(command, "")
}

// GetSupportedSourcesTargets returns the <src type>-<tgt type> pairs supported by command, one per line.
func GetSupportedSourcesTargets(command string) string {
	s := make([]string, 0, len(ActionFuncs[command]))
	for k := range ActionFuncs[command] {
		s = append(s, "  "+k)
	}
	sort.Strings(s)
	return strings.Join(s, "\n")
}

// getSupportedConnectionTypes returns a sorted comma separated string of the types found by
// getSupportedConnectionTypesMap.
func getSupportedConnectionTypes(commandFilter, typePrefix string) string {
	m := getSupportedConnectionTypesMap(commandFilter, typePrefix)
	s := make([]string, 0, len(m))
	for k := range m { // for each supported connection type as a key...
		s = append(s, k)
	}
	sort.Strings(s)
	return strings.Join(s, ", ")
}

// getSupportedConnectionTypesMap returns the unique source and target types in keys of the form
// <src type>-<tgt type>. Optionally supply a commandFilter to limit the search to one command, and a typePrefix
// to keep only types that start with it.
func getSupportedConnectionTypesMap(commandFilter, typePrefix string) map[string]struct{} {
	m := make(map[string]struct{})
	for command, actions := range ActionFuncs { // for each command in ActionFuncs...
		if commandFilter != "" && command != commandFilter {
			continue
		}
		for k := range actions { // for each Action...
			i := strings.Index(k, "-")
			for _, t := range []string{k[:i], k[i+1:]} {
				if commandFilter != "" && t == constants.ConnectionTypeWorkspace {
					continue // only list targets when filtering by command.
				}
				if strings.HasPrefix(t, typePrefix) {
					m[t] = struct{}{}
				}
			}
		}
	}
	return m
}

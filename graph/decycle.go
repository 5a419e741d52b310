// Package graph walks a result tree returned by record.Select's neighbour
// expansion and breaks any reference cycle before it reaches
// encoding/json.Marshal.
package graph

import graphkb "github.com/bcgsc/graphkb-core"

// Decycle walks v, replacing a record already on the current descent path
// with a stub carrying only its recordId. Two branches that both reach the
// same record through different paths are not a cycle and are left intact;
// only a record that would enclose itself is stubbed.
func Decycle(v any) any {
	return decycle(v, map[string]bool{})
}

func decycle(v any, path map[string]bool) any {
	switch t := v.(type) {
	case graphkb.Record:
		return decycleRecord(t, path)
	case map[string]any:
		return decycleRecord(graphkb.Record(t), path)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = decycle(e, path)
		}
		return out
	default:
		return v
	}
}

func decycleRecord(rec graphkb.Record, path map[string]bool) graphkb.Record {
	rid := rec.RID()
	if rid == "" {
		return walkFields(rec, path)
	}
	if path[rid] {
		return graphkb.Record{graphkb.KeyRID: rid}
	}
	path[rid] = true
	defer delete(path, rid)
	return walkFields(rec, path)
}

func walkFields(rec graphkb.Record, path map[string]bool) graphkb.Record {
	out := make(graphkb.Record, len(rec))
	for k, v := range rec {
		out[k] = decycle(v, path)
	}
	return out
}

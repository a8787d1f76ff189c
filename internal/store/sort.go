package store

import (
	"sort"
	"strconv"
	"strings"

	rkerrors "github.com/blueberrycongee/redikv/pkg/errors"
	"github.com/blueberrycongee/redikv/pkg/types"
)

// SortOpts controls the SORT command (SPEC_FULL §4.1 Open Question
// resolution).
type SortOpts struct {
	By       string // "" = natural sort; pattern with no '*' or "nosort" = skip
	Limit    bool
	Offset   int64
	Count    int64
	Get      []string
	Desc     bool
	Alpha    bool
	HasStore bool
	Store    string
}

// Sort implements SORT over List, Set, and SortedSet sources. SortedSet
// sources sort by member, ignoring score (spec SPEC_FULL §4.1: "matching
// Redis").
func (s *Store) Sort(key string, opts SortOpts, nowMs int64) ([][]byte, error) {
	elements, err := s.sortSourceElements(key, nowMs)
	if err != nil {
		return nil, err
	}

	skipSort := opts.By == "nosort" || (opts.By != "" && !strings.Contains(opts.By, "*"))
	if !skipSort {
		if opts.Alpha {
			sort.SliceStable(elements, func(i, j int) bool {
				return s.sortKey(elements[i], opts.By, nowMs) < s.sortKey(elements[j], opts.By, nowMs)
			})
		} else {
			var sortErr error
			sort.SliceStable(elements, func(i, j int) bool {
				a, err1 := parseSortNumeric(s.sortKey(elements[i], opts.By, nowMs))
				b, err2 := parseSortNumeric(s.sortKey(elements[j], opts.By, nowMs))
				if err1 != nil || err2 != nil {
					sortErr = rkerrors.ValueNotFloat()
				}
				return a < b
			})
			if sortErr != nil {
				return nil, sortErr
			}
		}
		if opts.Desc {
			for i, j := 0, len(elements)-1; i < j; i, j = i+1, j-1 {
				elements[i], elements[j] = elements[j], elements[i]
			}
		}
	}

	if opts.Limit {
		elements = applyLimitBytes(elements, opts.Offset, opts.Count)
	}

	out := elements
	if len(opts.Get) > 0 {
		out = nil
		for _, el := range elements {
			for _, pattern := range opts.Get {
				out = append(out, s.sortGetValue(el, pattern, nowMs))
			}
		}
	}

	if opts.HasStore {
		list := make([][]byte, len(out))
		copy(list, out)
		if len(list) == 0 {
			s.del(opts.Store)
		} else {
			s.set(opts.Store, types.Entry{Value: types.Value{Kind: types.KindList, List: list}})
		}
	}
	return out, nil
}

func (s *Store) sortSourceElements(key string, nowMs int64) ([][]byte, error) {
	e, ok := s.lookup(key, nowMs)
	if !ok {
		return nil, nil
	}
	switch e.Value.Kind {
	case types.KindList:
		out := make([][]byte, len(e.Value.List))
		copy(out, e.Value.List)
		return out, nil
	case types.KindSet:
		members := sortedSetMembers(e.Value.Set)
		out := make([][]byte, len(members))
		for i, m := range members {
			out[i] = []byte(m)
		}
		return out, nil
	case types.KindSortedSet:
		members := e.Value.ZSet.Members()
		out := make([][]byte, len(members))
		for i, m := range members {
			out[i] = []byte(m.Name)
		}
		return out, nil
	default:
		return nil, rkerrors.WrongType()
	}
}

func parseSortNumeric(s []byte) (float64, error) {
	return strconv.ParseFloat(string(s), 64)
}

// sortKey resolves the BY pattern (substituting '*' with the element) to
// a comparison key: either the element itself (no BY) or a hash field /
// string lookup.
func (s *Store) sortKey(element []byte, byPattern string, nowMs int64) string {
	if byPattern == "" {
		return string(element)
	}
	return string(s.sortGetValue(element, byPattern, nowMs))
}

// sortGetValue resolves a GET/BY pattern against element: "#" returns the
// element itself; "pattern*field" with a '->' looks up a hash field;
// otherwise the pattern with '*' substituted names a string key. Missing
// lookups return nil.
func (s *Store) sortGetValue(element []byte, pattern string, nowMs int64) []byte {
	if pattern == "#" {
		return element
	}
	resolved := strings.Replace(pattern, "*", string(element), 1)
	if idx := strings.Index(resolved, "->"); idx != -1 {
		key := resolved[:idx]
		field := resolved[idx+2:]
		v, _, _ := s.HGet(key, field, nowMs)
		return v
	}
	v, _, _ := s.Get(resolved, nowMs)
	return v
}

func applyLimitBytes(elements [][]byte, offset, count int64) [][]byte {
	if offset < 0 {
		offset = 0
	}
	if offset >= int64(len(elements)) {
		return nil
	}
	end := int64(len(elements))
	if count >= 0 && offset+count < end {
		end = offset + count
	}
	return elements[offset:end]
}
